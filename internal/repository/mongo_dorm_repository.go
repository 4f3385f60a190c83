package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/dorm-finder/internal/datasource"
	"github.com/iliyamo/dorm-finder/internal/model"
)

// MongoDormRepo serves dorm documents whose shape varies from import to
// import. Documents are passed through as raw records with ObjectIDs and
// BSON wrappers flattened to plain values.
type MongoDormRepo struct {
	dorms   *mongo.Collection
	reviews *mongo.Collection
}

func NewMongoDormRepo(db *mongo.Database) *MongoDormRepo {
	return &MongoDormRepo{dorms: db.Collection("dorms"), reviews: db.Collection("reviews")}
}

var mongoTextFields = []string{
	"name", "name_th", "name_en", "name.th", "name.en",
	"address", "location.address",
	"district", "location.district",
	"province", "location.province",
}

func (r *MongoDormRepo) FetchListings(ctx context.Context, q datasource.Query) ([]model.RawRecord, error) {
	filter := bson.M{}
	var and []bson.M
	for _, tok := range strings.Fields(strings.ToLower(q.Text)) {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(tok), Options: "i"}
		ors := make([]bson.M, len(mongoTextFields))
		for i, f := range mongoTextFields {
			ors[i] = bson.M{f: rx}
		}
		and = append(and, bson.M{"$or": ors})
	}
	if len(and) > 0 {
		filter["$and"] = and
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultListingLimit
	}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "_id", Value: -1}})
	cursor, err := r.dorms.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find dorms: %w", err)
	}
	defer cursor.Close(ctx)
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode dorms: %w", err)
	}
	out := make([]model.RawRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromBSON(d))
	}
	return out, nil
}

func (r *MongoDormRepo) FetchListingDetail(ctx context.Context, id string) (model.RawRecord, error) {
	var doc bson.M
	err := r.dorms.FindOne(ctx, bson.M{"_id": docID(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, datasource.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find dorm: %w", err)
	}
	rec := FromBSON(doc)
	reviews, err := r.FetchReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, embedded := rec["reviews"]; !embedded || len(reviews) > 0 {
		list := make([]any, len(reviews))
		for i, rv := range reviews {
			list[i] = map[string]any{"rating": rv.Rating, "comment": rv.Comment, "author": rv.Author}
		}
		rec["reviews"] = list
	}
	return rec, nil
}

type reviewDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	DormID    string             `bson:"dorm_id"`
	UserID    uint64             `bson:"user_id"`
	Author    string             `bson:"author,omitempty"`
	Rating    float64            `bson:"rating"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d reviewDoc) toModel() model.Review {
	return model.Review{
		ID:        d.ID.Hex(),
		DormID:    d.DormID,
		UserID:    d.UserID,
		Author:    d.Author,
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
}

func (r *MongoDormRepo) FetchReviews(ctx context.Context, dormID string) ([]model.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.reviews.Find(ctx, bson.M{"dorm_id": dormID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)
	var docs []reviewDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	out := make([]model.Review, len(docs))
	for i, d := range docs {
		out[i] = d.toModel()
	}
	return out, nil
}

func (r *MongoDormRepo) SubmitReview(ctx context.Context, dormID string, userID uint64, in model.ReviewInput) (model.Review, error) {
	if userID == 0 {
		return model.Review{}, datasource.ErrNotAuthenticated
	}
	n, err := r.dorms.CountDocuments(ctx, bson.M{"_id": docID(dormID)})
	if err != nil {
		return model.Review{}, err
	}
	if n == 0 {
		return model.Review{}, datasource.ErrNotFound
	}
	dup, err := r.reviews.CountDocuments(ctx, bson.M{"dorm_id": dormID, "user_id": userID})
	if err != nil {
		return model.Review{}, err
	}
	if dup > 0 {
		return model.Review{}, &datasource.ValidationError{Message: "you have already reviewed this dorm"}
	}
	doc := reviewDoc{
		ID:        primitive.NewObjectID(),
		DormID:    dormID,
		UserID:    userID,
		Author:    "user " + strconv.FormatUint(userID, 10),
		Rating:    float64(in.Rating),
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.reviews.InsertOne(ctx, doc); err != nil {
		return model.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoDormRepo) UpdateRatingSummary(ctx context.Context, dormID string, avg float64, count int) error {
	_, err := r.dorms.UpdateOne(ctx, bson.M{"_id": docID(dormID)},
		bson.M{"$set": bson.M{"rating_avg": avg, "review_count": count}})
	return err
}

func (r *MongoDormRepo) SetVerified(ctx context.Context, dormID string, verified bool) error {
	res, err := r.dorms.UpdateOne(ctx, bson.M{"_id": docID(dormID)},
		bson.M{"$set": bson.M{"verified": verified}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return datasource.ErrNotFound
	}
	return nil
}

// docID accepts both ObjectID hex strings and imported string ids.
func docID(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// FromBSON converts a decoded document into a RawRecord.
func FromBSON(doc bson.M) model.RawRecord {
	out := make(model.RawRecord, len(doc))
	for k, v := range doc {
		if cv := fromBSONValue(v); cv != nil {
			out[k] = cv
		}
	}
	return out
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Decimal128:
		return t.String()
	case primitive.Null, primitive.Undefined:
		return nil
	case bson.M:
		return map[string]any(FromBSON(t))
	case bson.D:
		return map[string]any(FromBSON(t.Map()))
	case bson.A:
		out := make([]any, 0, len(t))
		for _, item := range t {
			if cv := fromBSONValue(item); cv != nil {
				out = append(out, cv)
			}
		}
		return out
	case []any:
		return fromBSONValue(bson.A(t))
	case int32:
		return int64(t)
	default:
		return v
	}
}

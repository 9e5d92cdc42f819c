package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devconnector/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoLike struct {
	UserID string `bson:"user"`
}

type mongoComment struct {
	CommentID string    `bson:"id"`
	Text      string    `bson:"text"`
	Name      string    `bson:"name"`
	Avatar    string    `bson:"avatar"`
	UserID    string    `bson:"user"`
	CreatedAt time.Time `bson:"createdAt"`
}

type mongoPost struct {
	ID        bson.ObjectID  `bson:"_id,omitempty"`
	Text      string         `bson:"text"`
	Name      string         `bson:"name"`
	Avatar    string         `bson:"avatar"`
	UserID    string         `bson:"user"`
	Likes     []mongoLike    `bson:"likes"`
	Comments  []mongoComment `bson:"comments"`
	CreatedAt time.Time      `bson:"createdAt"`
}

type mongoUser struct {
	ID                     string    `bson:"_id"`
	Name                   string    `bson:"name"`
	Email                  string    `bson:"email"`
	Avatar                 string    `bson:"avatar"`
	PasswordHash           string    `bson:"passwordHash"`
	RefreshToken           string    `bson:"refreshToken"`
	RefreshTokenExpiryTime time.Time `bson:"refreshTokenExpiryTime"`
	CreatedAt              time.Time `bson:"createdAt"`
}

func (d *mongoPost) toModel() models.Post {
	post := models.Post{
		PostID:    d.ID.Hex(),
		Text:      d.Text,
		Name:      d.Name,
		Avatar:    d.Avatar,
		UserID:    d.UserID,
		Likes:     make([]models.Like, 0, len(d.Likes)),
		Comments:  make([]models.Comment, 0, len(d.Comments)),
		CreatedAt: d.CreatedAt,
	}

	for _, like := range d.Likes {
		post.Likes = append(post.Likes, models.Like{UserID: like.UserID})
	}

	for _, c := range d.Comments {
		post.Comments = append(post.Comments, models.Comment(c))
	}

	return post
}

func toMongoComment(c models.Comment) mongoComment {
	return mongoComment(c)
}

func (d *mongoUser) toModel() *models.User {
	return &models.User{
		UserID:                 d.ID,
		Name:                   d.Name,
		Email:                  d.Email,
		Avatar:                 d.Avatar,
		PasswordHash:           d.PasswordHash,
		RefreshToken:           d.RefreshToken,
		RefreshTokenExpiryTime: d.RefreshTokenExpiryTime,
		CreatedAt:              d.CreatedAt,
	}
}

// MongoPostRepository stores each post as one document with embedded likes
// and comments, mutated with $push/$pull rather than whole-document saves.
type MongoPostRepository struct {
	coll *mongo.Collection
}

func NewMongoPostRepository(coll *mongo.Collection) *MongoPostRepository {
	return &MongoPostRepository{coll: coll}
}

func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	doc := mongoPost{
		ID:        bson.NewObjectID(),
		Text:      post.Text,
		Name:      post.Name,
		Avatar:    post.Avatar,
		UserID:    post.UserID,
		Likes:     []mongoLike{},
		Comments:  []mongoComment{},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	*post = doc.toModel()
	return nil
}

func (r *MongoPostRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	oid, err := bson.ObjectIDFromHex(postID)
	if err != nil {
		return nil, fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	var doc mongoPost
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	post := doc.toModel()
	return &post, nil
}

func (r *MongoPostRepository) GetAll(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	var docs []mongoPost
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]models.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toModel())
	}

	return posts, nil
}

func (r *MongoPostRepository) Delete(ctx context.Context, postID string) error {
	oid, err := bson.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}

	return nil
}

func (r *MongoPostRepository) AddLike(ctx context.Context, postID string, like models.Like) error {
	oid, err := bson.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "likes.user", Value: bson.D{{Key: "$ne", Value: like.UserID}}},
	}

	matched, err := r.pushFront(ctx, filter, "likes", mongoLike{UserID: like.UserID})
	if err != nil {
		return fmt.Errorf("failed to add like: %w", err)
	}

	if matched == 0 {
		exists, err := r.exists(ctx, oid)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("like by %s on post %s: %w", like.UserID, postID, ErrAlreadyExists)
		}
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}

	return nil
}

func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	oid, err := bson.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	filter := bson.D{{Key: "_id", Value: oid}, {Key: "likes.user", Value: userID}}
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "likes", Value: bson.D{{Key: "user", Value: userID}}}}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("like by %s on post %s: %w", userID, postID, ErrNotFound)
	}

	return nil
}

func (r *MongoPostRepository) AddComment(ctx context.Context, postID string, comment models.Comment) error {
	oid, err := bson.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	matched, err := r.pushFront(ctx, bson.D{{Key: "_id", Value: oid}}, "comments", toMongoComment(comment))
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}

	if matched == 0 {
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}

	return nil
}

func (r *MongoPostRepository) RemoveComment(ctx context.Context, postID, commentID string) error {
	oid, err := bson.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	filter := bson.D{{Key: "_id", Value: oid}, {Key: "comments.id", Value: commentID}}
	update := bson.D{{Key: "$pull", Value: bson.D{{Key: "comments", Value: bson.D{{Key: "id", Value: commentID}}}}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove comment: %w", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("comment %s on post %s: %w", commentID, postID, ErrNotFound)
	}

	return nil
}

// pushFront prepends value to the array field of the documents matching filter.
func (r *MongoPostRepository) pushFront(ctx context.Context, filter bson.D, field string, value any) (int64, error) {
	update := bson.D{{Key: "$push", Value: bson.D{{Key: field, Value: bson.D{
		{Key: "$each", Value: bson.A{value}},
		{Key: "$position", Value: 0},
	}}}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	return res.MatchedCount, nil
}

func (r *MongoPostRepository) exists(ctx context.Context, oid bson.ObjectID) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, fmt.Errorf("failed to check post: %w", err)
	}
	return count > 0, nil
}

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll}
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	if err := prepareUser(user, password); err != nil {
		return err
	}

	doc := mongoUser{
		ID:                     user.UserID,
		Name:                   user.Name,
		Email:                  user.Email,
		Avatar:                 user.Avatar,
		PasswordHash:           user.PasswordHash,
		RefreshToken:           user.RefreshToken,
		RefreshTokenExpiryTime: user.RefreshTokenExpiryTime,
		CreatedAt:              user.CreatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.D, what string) (*models.User, error) {
	var doc mongoUser
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return doc.toModel(), nil
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: userID}}, fmt.Sprintf("user %s", userID))
}

func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, fmt.Sprintf("user with email %s", email))
}

func (r *MongoUserRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return checkPassword(user, password)
}

func (r *MongoUserRepository) UpdateAvatar(ctx context.Context, userID, avatar string) error {
	return r.set(ctx, userID, bson.D{{Key: "avatar", Value: avatar}})
}

func (r *MongoUserRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error {
	return r.set(ctx, userID, bson.D{
		{Key: "refreshToken", Value: refreshToken},
		{Key: "refreshTokenExpiryTime", Value: expiryTime},
	})
}

func (r *MongoUserRepository) set(ctx context.Context, userID string, fields bson.D) error {
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, bson.D{{Key: "$set", Value: fields}})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	return nil
}

func (r *MongoUserRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	filter := bson.D{
		{Key: "refreshToken", Value: refreshToken},
		{Key: "refreshTokenExpiryTime", Value: bson.D{{Key: "$gt", Value: time.Now()}}},
	}

	return r.findOne(ctx, filter, "refresh token is invalid or expired")
}

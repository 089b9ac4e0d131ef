package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"learnmyway/internal/model"
)

type MaterialRepo interface {
	Create(ctx context.Context, material *model.Material) error
	GetByID(ctx context.Context, id string) (*model.Material, error)
	List(ctx context.Context, class string) ([]*model.Material, error)
	Delete(ctx context.Context, id string) error
}

type materialRepo struct {
	collection *mongo.Collection
}

func NewMaterialRepo(db *mongo.Database) MaterialRepo {
	return &materialRepo{
		collection: db.Collection("materials"),
	}
}

func (r *materialRepo) Create(ctx context.Context, material *model.Material) error {
	_, err := r.collection.InsertOne(ctx, material)
	return err
}

func (r *materialRepo) GetByID(ctx context.Context, id string) (*model.Material, error) {
	var material model.Material
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&material)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &material, nil
}

// List returns materials visible to a class. Students pass their class
// assignment; teachers pass an empty string for everything.
func (r *materialRepo) List(ctx context.Context, class string) ([]*model.Material, error) {
	filter := bson.M{}
	if class != "" {
		filter = bson.M{"targetClass": bson.M{"$in": []string{class, model.TargetAll}}}
	}

	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var materials []*model.Material
	if err := cursor.All(ctx, &materials); err != nil {
		return nil, err
	}

	return materials, nil
}

func (r *materialRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

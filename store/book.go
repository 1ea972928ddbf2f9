package store

import (
	"context"

	"github.com/kevinaaaquil/digilib/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// bookDoc is one Book per document; seq keeps catalog order across a reload.
type bookDoc struct {
	Seq         int `bson:"seq"`
	models.Book `bson:",inline"`
}

// ReplaceBooks overwrites the snapshot with books in the given order.
func (db *DB) ReplaceBooks(ctx context.Context, books []models.Book) error {
	if _, err := db.Books().DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(books) == 0 {
		return nil
	}
	docs := make([]interface{}, len(books))
	for i, b := range books {
		docs[i] = bookDoc{Seq: i, Book: b}
	}
	_, err := db.Books().InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

// AllBooks returns the snapshot in catalog order.
func (db *DB) AllBooks(ctx context.Context) ([]models.Book, error) {
	cur, err := db.Books().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []bookDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	books := make([]models.Book, len(docs))
	for i, d := range docs {
		books[i] = d.Book
	}
	return books, nil
}

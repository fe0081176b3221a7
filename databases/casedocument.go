package databases

// go generate: mockery --name CaseDocumentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/darul-qaza/darul-qaza-api/models"
)

const caseDocumentCollectionName = "case_documents"

// CaseDocumentDatabase contains the methods to use with the case document database
type CaseDocumentDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseDocument, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseDocument, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type caseDocumentDatabase struct {
	db DatabaseHelper
}

// NewCaseDocumentDatabase initializes a new instance of case document database with the provided db connection
func NewCaseDocumentDatabase(db DatabaseHelper) CaseDocumentDatabase {
	return &caseDocumentDatabase{
		db: db,
	}
}

func (c *caseDocumentDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseDocument, error) {
	doc := &models.CaseDocument{}
	err := c.db.Collection(caseDocumentCollectionName).FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *caseDocumentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseDocument, error) {
	var docs []models.CaseDocument
	curr, err := c.db.Collection(caseDocumentCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &docs)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *caseDocumentDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(caseDocumentCollectionName).InsertOne(ctx, document, opts...)
}

func (c *caseDocumentDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(caseDocumentCollectionName).UpdateOne(ctx, filter, update, opts...)
}

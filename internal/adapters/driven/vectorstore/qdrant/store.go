// Package qdrant provides the persistent remote vector store backed by a
// Qdrant instance over gRPC. It is interchangeable with the in-memory
// store; rankings agree up to floating-point tolerance, though equal-score
// ties are ordered by Qdrant rather than by insertion sequence.
package qdrant

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
	"github.com/custodia-labs/casedex/internal/logger"
)

// Payload keys stored with every point.
const (
	payloadDocumentID = "document_id"
	payloadPageIndex  = "page_index"
	payloadTags       = "tags"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a Qdrant-backed implementation of driven.VectorStore.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	dims        int
}

// New connects to Qdrant at addr (host:port) and ensures the collection
// exists with the given dimensionality and cosine distance.
func New(ctx context.Context, addr, collection string, dims int) (*Store, error) {
	if dims < 1 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidInput, dims)
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %v", domain.ErrStoreUnavailable, addr, err)
	}

	s := &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		dims:        dims,
	}

	if err := s.ensureCollection(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

// ensureCollection creates the collection if it does not exist yet.
func (s *Store) ensureCollection(ctx context.Context) error {
	exists, err := s.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{
		CollectionName: s.collection,
	})
	if err != nil {
		return fmt.Errorf("%w: check collection %q: %v", domain.ErrStoreUnavailable, s.collection, err)
	}
	if exists.GetResult().GetExists() {
		return nil
	}

	logger.Info("Creating Qdrant collection %q (%d dimensions)", s.collection, s.dims)
	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(s.dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create collection %q: %v", domain.ErrStoreUnavailable, s.collection, err)
	}
	return nil
}

// Upsert inserts or replaces records by chunk ID. Writes wait for Qdrant
// to apply them, so a successful return means the batch is queryable.
func (s *Store) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	for _, r := range records {
		if len(r.Embedding) != s.dims {
			return fmt.Errorf("%w: record %s has %d dimensions, store expects %d",
				domain.ErrDimensionMismatch, r.ChunkID, len(r.Embedding), s.dims)
		}
	}
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: r.ChunkID}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: r.Embedding},
			}},
			Payload: recordPayload(r.Metadata),
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("%w: upsert %d points: %v", domain.ErrStoreUnavailable, len(points), err)
	}
	return nil
}

// Query returns up to topK records by cosine similarity, restricted to
// points carrying every tag in tagFilter.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int, tagFilter []string) ([]domain.VectorMatch, error) {
	if len(embedding) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			domain.ErrDimensionMismatch, len(embedding), s.dims)
	}
	if topK < 1 {
		return []domain.VectorMatch{}, nil
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		Filter:         tagsFilter(tagFilter),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", domain.ErrStoreUnavailable, err)
	}

	matches := make([]domain.VectorMatch, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		matches[i] = domain.VectorMatch{
			ChunkID:  pt.GetId().GetUuid(),
			Score:    float64(pt.GetScore()),
			Metadata: payloadMetadata(pt.GetPayload()),
		}
	}
	return matches, nil
}

// Delete removes all points belonging to documentID.
func (s *Store) Delete(ctx context.Context, documentID string) error {
	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{keywordCondition(payloadDocumentID, documentID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: delete document %s: %v", domain.ErrStoreUnavailable, documentID, err)
	}
	return nil
}

// Dimensions returns the configured embedding width.
func (s *Store) Dimensions() int {
	return s.dims
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// recordPayload builds the point payload for a record's metadata.
func recordPayload(meta domain.VectorMetadata) map[string]*pb.Value {
	tagValues := make([]*pb.Value, len(meta.Tags))
	for i, tag := range meta.Tags {
		tagValues[i] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: tag}}
	}

	return map[string]*pb.Value{
		payloadDocumentID: {Kind: &pb.Value_StringValue{StringValue: meta.DocumentID}},
		payloadPageIndex:  {Kind: &pb.Value_IntegerValue{IntegerValue: int64(meta.PageIndex)}},
		payloadTags:       {Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: tagValues}}},
	}
}

// payloadMetadata reverses recordPayload.
func payloadMetadata(payload map[string]*pb.Value) domain.VectorMetadata {
	meta := domain.VectorMetadata{
		DocumentID: payload[payloadDocumentID].GetStringValue(),
		PageIndex:  int(payload[payloadPageIndex].GetIntegerValue()),
	}
	for _, v := range payload[payloadTags].GetListValue().GetValues() {
		meta.Tags = append(meta.Tags, v.GetStringValue())
	}
	return meta
}

// tagsFilter builds a Must filter requiring every tag. A keyword match on
// a list payload field matches when the list contains the value, so
// stacking conditions gives superset semantics.
func tagsFilter(tags []string) *pb.Filter {
	if len(tags) == 0 {
		return nil
	}
	must := make([]*pb.Condition, len(tags))
	for i, tag := range tags {
		must[i] = keywordCondition(payloadTags, tag)
	}
	return &pb.Filter{Must: must}
}

func keywordCondition(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key:   key,
				Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}},
			},
		},
	}
}

// SPDX-License-Identifier: Apache-2.0
// Package vectorstore adapts a Qdrant collection to runtime.Store, so
// store.vectorSearch can run against a real nearest-neighbour index
// instead of an in-process stub.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jllopis/atomvm/pkg/runtime"
)

// Store backs runtime.Store's VectorSearch against a single Qdrant
// collection reached over gRPC. Get always reports a miss; Set and Query
// return a not-supported error.
type Store struct {
	collection  string
	points      pb.PointsClient
	collections pb.CollectionsClient
}

// New dials addr (host:port, no TLS) and targets collection for every
// subsequent call.
func New(addr, collection string) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("vectorstore: dial %s: %w", addr, err)
	}
	return &Store{
		collection:  collection,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
	}, nil
}

// EnsureCollection creates the collection if it does not already exist,
// sized for vectorSize-dimensional cosine-distance vectors.
func (s *Store) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("vectorstore: create collection %s: %w", s.collection, err)
	}
	return nil
}

// Set is not supported and always returns an error: a keyed write carries
// no vector to index. Write points with their vectors through Upsert and
// look them up with VectorSearch.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	return fmt.Errorf("vectorstore: Set is not supported; use Upsert with an embedded vector")
}

// Get is not supported: Qdrant is a similarity index, not a key/value
// store, and this adapter does not maintain a secondary key lookup.
func (s *Store) Get(ctx context.Context, key string) (any, bool, error) {
	return nil, false, nil
}

// Query is not supported by this adapter; VectorSearch is the only query
// path Qdrant exposes that fits the Store contract.
func (s *Store) Query(ctx context.Context, query any) (any, error) {
	return nil, fmt.Errorf("vectorstore: Query is not supported, use VectorSearch")
}

// Upsert writes points (id, vector, payload triples) into the collection,
// converting each payload value into Qdrant's typed wire representation.
func (s *Store) Upsert(ctx context.Context, points []Point) error {
	qPoints := make([]*pb.PointStruct, len(points))
	for i, p := range points {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		qPoints[i] = &pb.PointStruct{
			Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: p.Vector}},
			},
			Payload: encodePayload(p.Payload),
		}
	}
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points:         qPoints,
	})
	if err != nil {
		return fmt.Errorf("vectorstore: upsert: %w", err)
	}
	return nil
}

// VectorSearch runs a top-k cosine search and maps the hits onto
// runtime.SearchResult, decoding each hit's payload back into a plain map.
func (s *Store) VectorSearch(ctx context.Context, vector []float32, topK int) ([]runtime.SearchResult, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search: %w", err)
	}
	out := make([]runtime.SearchResult, len(resp.Result))
	for i, r := range resp.Result {
		out[i] = runtime.SearchResult{
			ID:    pointID(r.Id),
			Score: r.Score,
			Value: decodePayload(r.Payload),
		}
	}
	return out, nil
}

// Point is one vector plus its payload, as written through Upsert.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

func pointID(id *pb.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return fmt.Sprintf("%d", id.GetNum())
}

func encodePayload(payload map[string]any) map[string]*pb.Value {
	out := make(map[string]*pb.Value, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			out[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: val}}
		case int:
			out[k] = &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(val)}}
		case int64:
			out[k] = &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: val}}
		case float64:
			out[k] = &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: val}}
		case bool:
			out[k] = &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: val}}
		}
	}
	return out
}

func decodePayload(payload map[string]*pb.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch knd := v.GetKind().(type) {
		case *pb.Value_StringValue:
			out[k] = knd.StringValue
		case *pb.Value_IntegerValue:
			out[k] = knd.IntegerValue
		case *pb.Value_DoubleValue:
			out[k] = knd.DoubleValue
		case *pb.Value_BoolValue:
			out[k] = knd.BoolValue
		}
	}
	return out
}

var _ runtime.Store = (*Store)(nil)

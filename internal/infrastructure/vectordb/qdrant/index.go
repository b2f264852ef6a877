// Package qdrant provides a VectorIndex implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ersonp/rumor-mill/internal/domain/ports"
	"github.com/ersonp/rumor-mill/internal/infrastructure/config"
)

// Index implements the VectorIndex interface using Qdrant. Each rumor is
// one point keyed by the rumor id, carrying the latest indexed content as
// payload.
type Index struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	embedder   ports.Embedder
	collection string
	conn       *grpc.ClientConn
}

// NewIndex creates a new Qdrant rumor index.
func NewIndex(cfg config.QdrantConfig, embedder ports.Embedder) (*Index, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Index{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		embedder:   embedder,
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

// Close closes the gRPC connection.
func (i *Index) Close() error {
	if i.conn != nil {
		return i.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (i *Index) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := i.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: i.collection,
	})
	if err == nil {
		return nil
	}

	_, err = i.client.Create(ctx, &pb.CreateCollection{
		CollectionName: i.collection,
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
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// Index stores or refreshes the searchable content for a rumor. Upserting
// on the rumor id keeps one point per rumor, so re-indexing after a
// mutation replaces the stale vector.
func (i *Index) Index(ctx context.Context, rumorID, content string) error {
	vector, err := i.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embedding rumor content: %w", err)
	}

	point := &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{
				Uuid: rumorID,
			},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{
					Data: vector,
				},
			},
		},
		Payload: map[string]*pb.Value{
			"rumor_id": {Kind: &pb.Value_StringValue{StringValue: rumorID}},
			"content":  {Kind: &pb.Value_StringValue{StringValue: content}},
		},
	}

	_, err = i.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: i.collection,
		Points:         []*pb.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("upserting point: %w", err)
	}

	return nil
}

// Search returns rumors semantically similar to the query text.
func (i *Index) Search(ctx context.Context, text string, limit int) ([]ports.SimilarRumor, error) {
	vector, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	resp, err := i.points.Search(ctx, &pb.SearchPoints{
		CollectionName: i.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	hits := make([]ports.SimilarRumor, 0, len(resp.Result))
	for _, point := range resp.Result {
		hits = append(hits, ports.SimilarRumor{
			RumorID: getStringValue(point.Payload, "rumor_id"),
			Content: getStringValue(point.Payload, "content"),
			Score:   point.Score,
		})
	}

	return hits, nil
}

// Delete removes a rumor from the index.
func (i *Index) Delete(ctx context.Context, rumorID string) error {
	_, err := i.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: i.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: rumorID}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}

	return nil
}

// Count returns the total number of indexed rumors.
func (i *Index) Count(ctx context.Context) (uint64, error) {
	resp, err := i.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: i.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

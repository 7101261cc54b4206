package repository

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

const (
	defaultVectorDimension = 384 // all-MiniLM-L6-v2
)

// QdrantConnectionConfig holds configuration for Qdrant connection
type QdrantConnectionConfig struct {
	Host            string
	Port            int
	Collection      string
	APIKey          string // Qdrant Cloud API Key (enables TLS automatically)
	UseTLS          bool
	VectorDimension int
}

// apiKeyInterceptor creates a unary interceptor that adds API key to metadata
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// QdrantRepository is the persistent vector index.
type QdrantRepository struct {
	conn            *grpc.ClientConn
	pointsClient    pb.PointsClient
	collectClient   pb.CollectionsClient
	collectionName  string
	vectorDimension int
}

// NewQdrantRepository creates a new QdrantRepository.
// Supports both local Qdrant (insecure) and Qdrant Cloud (TLS + API Key).
func NewQdrantRepository(cfg *QdrantConnectionConfig) (*QdrantRepository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	vectorDimension := cfg.VectorDimension
	if vectorDimension <= 0 {
		vectorDimension = defaultVectorDimension
	}

	var opts []grpc.DialOption
	if cfg.UseTLS || cfg.APIKey != "" {
		creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS13})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		if cfg.APIKey != "" {
			opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
		}
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &QdrantRepository{
		conn:            conn,
		pointsClient:    pb.NewPointsClient(conn),
		collectClient:   pb.NewCollectionsClient(conn),
		collectionName:  cfg.Collection,
		vectorDimension: vectorDimension,
	}, nil
}

// Close closes the gRPC connection
func (r *QdrantRepository) Close() error {
	return r.conn.Close()
}

// Collection returns the collection name.
func (r *QdrantRepository) Collection() string {
	return r.collectionName
}

// EnsureCollection creates the collection if it doesn't exist
func (r *QdrantRepository) EnsureCollection(ctx context.Context) error {
	info, err := r.collectClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collectionName,
	})
	if err == nil {
		if size, ok := collectionVectorSize(info.GetResult()); ok && size != uint64(r.vectorDimension) {
			return fmt.Errorf("collection %s has vector size %d, expected %d", r.collectionName, size, r.vectorDimension)
		}
		return nil
	}

	_, err = r.collectClient.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(r.vectorDimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// Reset drops the collection and recreates it empty. Unrecoverable.
func (r *QdrantRepository) Reset(ctx context.Context) error {
	if _, err := r.collectClient.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collectionName,
	}); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return r.EnsureCollection(ctx)
}

func collectionVectorSize(info *pb.CollectionInfo) (uint64, bool) {
	params := info.GetConfig().GetParams()
	if params == nil {
		return 0, false
	}
	if single := params.GetVectorsConfig().GetParams(); single != nil && single.GetSize() > 0 {
		return single.GetSize(), true
	}
	return 0, false
}

// Upsert writes vectors[i] with payloads[i]. Both slices must be the same length.
func (r *QdrantRepository) Upsert(ctx context.Context, vectors [][]float32, payloads []*GifPayload) error {
	if len(vectors) != len(payloads) {
		return fmt.Errorf("vectors and payloads length mismatch: %d != %d", len(vectors), len(payloads))
	}
	if len(vectors) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(vectors))
	for i, vector := range vectors {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: payloads[i].PointID()},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vector},
				},
			},
			Payload: payloadToValues(payloads[i]),
		}
	}

	wait := true
	_, err := r.pointsClient.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collectionName,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

func payloadToValues(p *GifPayload) map[string]*pb.Value {
	return map[string]*pb.Value{
		"media_id":    stringValue(p.MediaID),
		"title":       stringValue(p.Title),
		"url":         stringValue(p.URL),
		"preview_url": stringValue(p.PreviewURL),
		"mp4_url":     stringValue(p.MP4URL),
		"width":       {Kind: &pb.Value_IntegerValue{IntegerValue: int64(p.Width)}},
		"height":      {Kind: &pb.Value_IntegerValue{IntegerValue: int64(p.Height)}},
		"query":       stringValue(p.Query),
		"indexed_at":  stringValue(p.IndexedAt.UTC().Format(time.RFC3339)),
	}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

// Search returns the topK nearest neighbours of vector, best first.
func (r *QdrantRepository) Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	resp, err := r.pointsClient.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collectionName,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, scored := range resp.GetResult() {
		results[i] = SearchResult{
			ID:      scored.GetId().GetUuid(),
			Score:   scored.GetScore(),
			Payload: parsePayload(scored.GetPayload()),
		}
	}

	return results, nil
}

func parsePayload(payload map[string]*pb.Value) *GifPayload {
	if payload == nil {
		return nil
	}

	p := &GifPayload{
		MediaID:    payload["media_id"].GetStringValue(),
		Title:      payload["title"].GetStringValue(),
		URL:        payload["url"].GetStringValue(),
		PreviewURL: payload["preview_url"].GetStringValue(),
		MP4URL:     payload["mp4_url"].GetStringValue(),
		Width:      int(payload["width"].GetIntegerValue()),
		Height:     int(payload["height"].GetIntegerValue()),
		Query:      payload["query"].GetStringValue(),
	}
	if ts, err := time.Parse(time.RFC3339, payload["indexed_at"].GetStringValue()); err == nil {
		p.IndexedAt = ts
	}
	return p
}

// Count returns the exact number of points in the collection.
func (r *QdrantRepository) Count(ctx context.Context) (uint64, error) {
	exact := true
	resp, err := r.pointsClient.Count(ctx, &pb.CountPoints{
		CollectionName: r.collectionName,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return resp.GetResult().GetCount(), nil
}

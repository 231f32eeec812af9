// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package qdrant provides a Qdrant-backed vector index for the reference
// engine.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/wtfsayo/agentbridge/pkg/engine"
)

// Index stores memory embeddings in a Qdrant collection.
type Index struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

var _ engine.VectorIndex = (*Index)(nil)

// New connects to Qdrant at addr and ensures the collection exists with the
// given vector size. Creation races are tolerated: an already-existing
// collection is not an error.
func New(ctx context.Context, addr, collection string, vectorSize uint64) (*Index, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	idx := &Index{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}
	if err := idx.ensureCollection(ctx, vectorSize); err != nil {
		conn.Close()
		return nil, err
	}
	return idx, nil
}

func (i *Index) ensureCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := i.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{
		CollectionName: i.collection,
	})
	if err == nil && exists.GetResult().GetExists() {
		return nil
	}
	_, err = i.collections.Create(ctx, &pb.CreateCollection{
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
		return fmt.Errorf("qdrant create collection: %w", err)
	}
	return nil
}

func (i *Index) Upsert(ctx context.Context, id uuid.UUID, vector []float32) error {
	wait := true
	_, err := i.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: i.collection,
		Wait:           &wait,
		Points: []*pb.PointStruct{{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: id.String()},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vector},
				},
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (i *Index) Delete(ctx context.Context, id uuid.UUID) error {
	wait := true
	_, err := i.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: i.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{{
						PointIdOptions: &pb.PointId_Uuid{Uuid: id.String()},
					}},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant delete: %w", err)
	}
	return nil
}

func (i *Index) Search(ctx context.Context, vector []float32, limit int) ([]engine.Match, error) {
	if limit <= 0 {
		limit = 10
	}
	resp, err := i.points.Search(ctx, &pb.SearchPoints{
		CollectionName: i.collection,
		Vector:         vector,
		Limit:          uint64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}
	var out []engine.Match
	for _, point := range resp.GetResult() {
		raw := point.GetId().GetUuid()
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		out = append(out, engine.Match{ID: id, Score: float64(point.GetScore())})
	}
	return out, nil
}

// Close closes the gRPC connection.
func (i *Index) Close() error { return i.conn.Close() }

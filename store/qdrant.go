package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantStore reads from a Qdrant collection over gRPC. Namespacing is
// expressed as a payload filter on the "namespace" field since Qdrant
// has no native namespace concept.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	namespace  string
}

// NewQdrantStore connects to a Qdrant instance. The endpoint may carry a
// scheme prefix ("http://localhost"), which is stripped before dialing.
func NewQdrantStore(ctx context.Context, endpoint string, port int, useTLS bool, collection, apiKey, namespace string) (*QdrantStore, error) {
	if collection == "" {
		return nil, fmt.Errorf("qdrant collection not set")
	}

	host := endpoint
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimSuffix(host, "/")
	if host == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	// Fail fast on unreachable instances or missing collections.
	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check qdrant collection: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("qdrant collection %q does not exist", collection)
	}

	return &QdrantStore{
		client:     client,
		collection: collection,
		namespace:  namespace,
	}, nil
}

func (s *QdrantStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	req := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if s.namespace != "" {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("namespace", s.namespace),
			},
		}
	}

	points, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	matches := make([]Match, 0, len(points))
	for _, p := range points {
		matches = append(matches, Match{
			ID:       pointIDString(p.GetId()),
			Score:    p.GetScore(),
			Metadata: payloadToMap(p.GetPayload()),
		})
	}

	return matches, nil
}

func (s *QdrantStore) Fetch(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, parsePointID(id))
	}

	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant fetch failed: %w", err)
	}

	// Qdrant returns points in arbitrary order; re-order by request.
	byID := make(map[string]Record, len(points))
	for _, p := range points {
		payload := payloadToMap(p.GetPayload())
		if s.namespace != "" {
			if ns, _ := payload["namespace"].(string); ns != s.namespace {
				continue
			}
		}
		id := pointIDString(p.GetId())
		byID[id] = Record{ID: id, Metadata: payload}
	}

	records := make([]Record, 0, len(byID))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			records = append(records, rec)
		}
	}

	return records, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// parsePointID maps an external id to a Qdrant point id: numeric ids
// become integer points, everything else is treated as a UUID.
func parsePointID(id string) *qdrant.PointId {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrant.NewIDNum(n)
	}
	return qdrant.NewID(id)
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// payloadToMap converts a Qdrant payload to plain Go values.
func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	if len(payload) == 0 {
		return nil
	}
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = valueToAny(value)
	}
	return out
}

func valueToAny(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		items := make([]any, 0, len(kind.ListValue.GetValues()))
		for _, item := range kind.ListValue.GetValues() {
			items = append(items, valueToAny(item))
		}
		return items
	case *qdrant.Value_StructValue:
		return payloadToMap(kind.StructValue.GetFields())
	default:
		return nil
	}
}

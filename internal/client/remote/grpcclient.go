package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/api"
	"github.com/dmitrijs2005/cabinetmap/internal/client/models"
	"github.com/dmitrijs2005/cabinetmap/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const callTimeout = 10 * time.Second

type GRPCClient struct {
	endpointURL string
	deviceID    string
	conn        *grpc.ClientConn
	client      api.VenueServiceClient

	mu          sync.Mutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// authenticate exchanges the device id for a fresh access token.
func (s *GRPCClient) authenticate(ctx context.Context) error {
	resp, err := s.client.Authenticate(ctx, wrapperspb.String(s.deviceID))
	if err != nil {
		return err
	}
	tok := resp.GetFields()[api.FieldAccessToken].GetStringValue()
	if tok == "" {
		return fmt.Errorf("authenticate: %w", common.ErrInvalidToken)
	}

	s.mu.Lock()
	s.accessToken = tok
	s.mu.Unlock()
	return nil
}

func isAuthRetryable(err error) bool {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated {
		return false
	}
	return st.Message() == common.ErrTokenExpired.Error() || st.Message() == common.ErrMissingToken.Error()
}

// accessTokenInterceptor attaches the access token, authenticating first if
// there is none, and re-authenticates once when the server reports the
// token expired.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if api.PublicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	if s.token() == "" {
		if err := s.authenticate(ctx); err != nil {
			return err
		}
	}

	err := invoker(withAccessToken(ctx, s.token()), method, req, reply, cc, opts...)
	if err == nil || !isAuthRetryable(err) {
		return err
	}

	if err := s.authenticate(ctx); err != nil {
		return err
	}
	return invoker(withAccessToken(ctx, s.token()), method, req, reply, cc, opts...)
}

// NewGRPCClient creates a lazily connecting client. deviceID identifies this
// installation to the server. Extra dial options are appended (tests use
// them to dial an in-memory listener).
func NewGRPCClient(endpointURL, deviceID string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, deviceID: deviceID}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewVenueServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return mapError(err)
	}
	if resp.GetValue() != api.PingOK {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) AddFavorite(ctx context.Context, storeID string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, err := s.client.AddFavorite(ctx, wrapperspb.String(storeID))
	return mapError(err)
}

func (s *GRPCClient) RemoveFavorite(ctx context.Context, storeID string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, err := s.client.RemoveFavorite(ctx, wrapperspb.String(storeID))
	return mapError(err)
}

func (s *GRPCClient) RecordSearch(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, err := s.client.RecordSearch(ctx, wrapperspb.String(query))
	return mapError(err)
}

func (s *GRPCClient) SubmitSuggestion(ctx context.Context, storeID string, sg models.Suggestion) error {
	in, err := suggestionToStruct(storeID, sg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	_, err = s.client.SubmitSuggestion(ctx, in)
	return mapError(err)
}

// PresignPhotoUpload asks the server for a one-off upload URL for a photo of
// storeID. The returned key is what a photos suggestion should carry.
func (s *GRPCClient) PresignPhotoUpload(ctx context.Context, storeID string) (key, url string, err error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := s.client.PresignPhotoUpload(ctx, wrapperspb.String(storeID))
	if err != nil {
		return "", "", mapError(err)
	}
	f := resp.GetFields()
	return f[api.FieldKey].GetStringValue(), f[api.FieldURL].GetStringValue(), nil
}

// ListVenues fetches the whole venue catalogue.
func (s *GRPCClient) ListVenues(ctx context.Context) ([]models.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := s.client.ListVenues(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, mapError(err)
	}

	venues := []models.Venue{}
	if v, ok := resp.GetFields()[api.FieldVenues]; ok {
		if err := decodeValue(v.AsInterface(), &venues); err != nil {
			return nil, fmt.Errorf("list venues: %w", err)
		}
	}
	return venues, nil
}

// GetVenue fetches one venue. An unknown id yields ErrNotFound.
func (s *GRPCClient) GetVenue(ctx context.Context, id string) (models.Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := s.client.GetVenue(ctx, wrapperspb.String(id))
	if err != nil {
		return models.Venue{}, mapError(err)
	}

	var v models.Venue
	if err := decodeValue(resp.AsMap(), &v); err != nil {
		return models.Venue{}, fmt.Errorf("get venue %s: %w", id, err)
	}
	return v, nil
}

// decodeValue re-reads a structpb payload through its JSON form.
func decodeValue(in any, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func suggestionToStruct(storeID string, sg models.Suggestion) (*structpb.Struct, error) {
	var value any
	if len(sg.Value) > 0 {
		if err := json.Unmarshal(sg.Value, &value); err != nil {
			return nil, fmt.Errorf("suggestion %s: decode value: %w", sg.ID, err)
		}
	}

	return structpb.NewStruct(map[string]any{
		api.FieldID:        sg.ID,
		api.FieldStoreID:   storeID,
		api.FieldField:     sg.Field,
		api.FieldValue:     value,
		api.FieldComment:   sg.Comment,
		api.FieldAnonymous: sg.Anonymous,
		api.FieldCreatedAt: sg.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

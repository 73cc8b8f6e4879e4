package api

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakeServer struct {
	calls []string
}

func (f *fakeServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	f.calls = append(f.calls, "Ping")
	return wrapperspb.String(PingOK), nil
}

func (f *fakeServer) Authenticate(_ context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	f.calls = append(f.calls, "Authenticate:"+in.GetValue())
	return structpb.NewStruct(map[string]any{FieldAccessToken: "tok"})
}

func (f *fakeServer) AddFavorite(_ context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	f.calls = append(f.calls, "AddFavorite:"+in.GetValue())
	return &emptypb.Empty{}, nil
}

func (f *fakeServer) RemoveFavorite(_ context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	f.calls = append(f.calls, "RemoveFavorite:"+in.GetValue())
	return &emptypb.Empty{}, nil
}

func (f *fakeServer) RecordSearch(_ context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	f.calls = append(f.calls, "RecordSearch:"+in.GetValue())
	return nil, status.Error(codes.InvalidArgument, "bad query")
}

func (f *fakeServer) SubmitSuggestion(_ context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	f.calls = append(f.calls, "SubmitSuggestion:"+in.GetFields()[FieldStoreID].GetStringValue())
	return wrapperspb.String("srv-1"), nil
}

func (f *fakeServer) PresignPhotoUpload(_ context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	f.calls = append(f.calls, "PresignPhotoUpload:"+in.GetValue())
	return structpb.NewStruct(map[string]any{FieldKey: "k", FieldURL: "http://u"})
}

func (f *fakeServer) ListVenues(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	f.calls = append(f.calls, "ListVenues")
	return structpb.NewStruct(map[string]any{FieldVenues: []any{map[string]any{"id": "v1"}}})
}

func (f *fakeServer) GetVenue(_ context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	f.calls = append(f.calls, "GetVenue:"+in.GetValue())
	return structpb.NewStruct(map[string]any{"id": in.GetValue()})
}

func dial(t *testing.T, srv VenueServiceServer, opts ...grpc.ServerOption) VenueServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterVenueServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewVenueServiceClient(conn)
}

func TestVenueService_RoundTrip(t *testing.T) {
	fake := &fakeServer{}
	c := dial(t, fake)
	ctx := context.Background()

	pong, err := c.Ping(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, PingOK, pong.GetValue())

	auth, err := c.Authenticate(ctx, wrapperspb.String("dev-1"))
	require.NoError(t, err)
	assert.Equal(t, "tok", auth.GetFields()[FieldAccessToken].GetStringValue())

	_, err = c.AddFavorite(ctx, wrapperspb.String("s1"))
	require.NoError(t, err)
	_, err = c.RemoveFavorite(ctx, wrapperspb.String("s1"))
	require.NoError(t, err)

	_, err = c.RecordSearch(ctx, wrapperspb.String("q"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	in, err := structpb.NewStruct(map[string]any{FieldStoreID: "s2"})
	require.NoError(t, err)
	id, err := c.SubmitSuggestion(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "srv-1", id.GetValue())

	ps, err := c.PresignPhotoUpload(ctx, wrapperspb.String("s3"))
	require.NoError(t, err)
	assert.Equal(t, "http://u", ps.GetFields()[FieldURL].GetStringValue())

	list, err := c.ListVenues(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Len(t, list.GetFields()[FieldVenues].GetListValue().GetValues(), 1)

	v, err := c.GetVenue(ctx, wrapperspb.String("v9"))
	require.NoError(t, err)
	assert.Equal(t, "v9", v.GetFields()["id"].GetStringValue())

	assert.Equal(t, []string{
		"Ping", "Authenticate:dev-1", "AddFavorite:s1", "RemoveFavorite:s1",
		"RecordSearch:q", "SubmitSuggestion:s2", "PresignPhotoUpload:s3",
		"ListVenues", "GetVenue:v9",
	}, fake.calls)
}

func TestVenueService_InterceptorSeesFullMethod(t *testing.T) {
	var seen []string
	icpt := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return handler(ctx, req)
	}
	c := dial(t, &fakeServer{}, grpc.UnaryInterceptor(icpt))

	_, err := c.Ping(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	_, err = c.AddFavorite(context.Background(), wrapperspb.String("s1"))
	require.NoError(t, err)

	assert.Equal(t, []string{MethodPing, MethodAddFavorite}, seen)
}

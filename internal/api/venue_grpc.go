// Package api describes the cabinetmap.v1.VenueService gRPC contract shared
// by the client and the server. Messages are protobuf well-known types, so
// the service needs no generated message code; this file plays the role of
// the generated *_grpc.pb.go.
package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "cabinetmap.v1.VenueService"

const (
	MethodPing               = "/" + ServiceName + "/Ping"
	MethodAuthenticate       = "/" + ServiceName + "/Authenticate"
	MethodAddFavorite        = "/" + ServiceName + "/AddFavorite"
	MethodRemoveFavorite     = "/" + ServiceName + "/RemoveFavorite"
	MethodRecordSearch       = "/" + ServiceName + "/RecordSearch"
	MethodSubmitSuggestion   = "/" + ServiceName + "/SubmitSuggestion"
	MethodPresignPhotoUpload = "/" + ServiceName + "/PresignPhotoUpload"
	MethodListVenues         = "/" + ServiceName + "/ListVenues"
	MethodGetVenue           = "/" + ServiceName + "/GetVenue"
)

// PublicMethods need no access token.
var PublicMethods = map[string]bool{
	MethodPing:         true,
	MethodAuthenticate: true,
	MethodListVenues:   true,
	MethodGetVenue:     true,
}

// PingOK is the status string a healthy server answers Ping with.
const PingOK = "OK"

// Struct field names used by Authenticate, SubmitSuggestion,
// PresignPhotoUpload and ListVenues. A venue itself travels as a Struct
// holding its JSON form.
const (
	FieldAccessToken = "access_token"
	FieldID          = "id"
	FieldStoreID     = "store_id"
	FieldField       = "field"
	FieldValue       = "value"
	FieldComment     = "comment"
	FieldAnonymous   = "anonymous"
	FieldCreatedAt   = "created_at"
	FieldKey         = "key"
	FieldURL         = "url"
	FieldVenues      = "venues"
)

// VenueServiceClient is the client API for VenueService.
type VenueServiceClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Authenticate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	AddFavorite(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	RemoveFavorite(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	RecordSearch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SubmitSuggestion(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	PresignPhotoUpload(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListVenues(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetVenue(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type venueServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVenueServiceClient(cc grpc.ClientConnInterface) VenueServiceClient {
	return &venueServiceClient{cc: cc}
}

func (c *venueServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MethodPing, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *venueServiceClient) Authenticate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodAuthenticate, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *venueServiceClient) AddFavorite(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodAddFavorite, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *venueServiceClient) RemoveFavorite(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodRemoveFavorite, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *venueServiceClient) RecordSearch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodRecordSearch, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *venueServiceClient) SubmitSuggestion(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MethodSubmitSuggestion, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *venueServiceClient) PresignPhotoUpload(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodPresignPhotoUpload, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *venueServiceClient) ListVenues(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodListVenues, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *venueServiceClient) GetVenue(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodGetVenue, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// VenueServiceServer is the server API for VenueService.
type VenueServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Authenticate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	AddFavorite(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	RemoveFavorite(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	RecordSearch(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	SubmitSuggestion(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	PresignPhotoUpload(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListVenues(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetVenue(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterVenueServiceServer(s grpc.ServiceRegistrar, srv VenueServiceServer) {
	s.RegisterService(&VenueServiceDesc, srv)
}

func unary(method string, newReq func() any, call func(VenueServiceServer, context.Context, any) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VenueServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VenueServiceServer), ctx, req)
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func newEmpty() any  { return new(emptypb.Empty) }
func newString() any { return new(wrapperspb.StringValue) }
func newStruct() any { return new(structpb.Struct) }

// VenueServiceDesc is the grpc.ServiceDesc for VenueService.
var VenueServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VenueServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", newEmpty, func(s VenueServiceServer, ctx context.Context, req any) (any, error) {
			return s.Ping(ctx, req.(*emptypb.Empty))
		}),
		unary("Authenticate", newString, func(s VenueServiceServer, ctx context.Context, req any) (any, error) {
			return s.Authenticate(ctx, req.(*wrapperspb.StringValue))
		}),
		unary("AddFavorite", newString, func(s VenueServiceServer, ctx context.Context, req any) (any, error) {
			return s.AddFavorite(ctx, req.(*wrapperspb.StringValue))
		}),
		unary("RemoveFavorite", newString, func(s VenueServiceServer, ctx context.Context, req any) (any, error) {
			return s.RemoveFavorite(ctx, req.(*wrapperspb.StringValue))
		}),
		unary("RecordSearch", newString, func(s VenueServiceServer, ctx context.Context, req any) (any, error) {
			return s.RecordSearch(ctx, req.(*wrapperspb.StringValue))
		}),
		unary("SubmitSuggestion", newStruct, func(s VenueServiceServer, ctx context.Context, req any) (any, error) {
			return s.SubmitSuggestion(ctx, req.(*structpb.Struct))
		}),
		unary("PresignPhotoUpload", newString, func(s VenueServiceServer, ctx context.Context, req any) (any, error) {
			return s.PresignPhotoUpload(ctx, req.(*wrapperspb.StringValue))
		}),
		unary("ListVenues", newEmpty, func(s VenueServiceServer, ctx context.Context, req any) (any, error) {
			return s.ListVenues(ctx, req.(*emptypb.Empty))
		}),
		unary("GetVenue", newString, func(s VenueServiceServer, ctx context.Context, req any) (any, error) {
			return s.GetVenue(ctx, req.(*wrapperspb.StringValue))
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cabinetmap/v1/venue.proto",
}

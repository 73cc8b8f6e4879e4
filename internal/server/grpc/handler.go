package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/api"
	"github.com/dmitrijs2005/cabinetmap/internal/common"
	"github.com/dmitrijs2005/cabinetmap/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(api.PingOK), nil
}

func (s *GRPCServer) Authenticate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	token, err := s.auth.Authenticate(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, "authenticate", err)
	}

	return structpb.NewStruct(map[string]any{api.FieldAccessToken: token})
}

func (s *GRPCServer) AddFavorite(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.venues.AddFavorite(ctx, deviceIDFromContext(ctx), req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, "add favorite", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) RemoveFavorite(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.venues.RemoveFavorite(ctx, deviceIDFromContext(ctx), req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, "remove favorite", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) RecordSearch(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.venues.RecordSearch(ctx, deviceIDFromContext(ctx), req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, "record search", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) SubmitSuggestion(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	sg, err := structToSuggestion(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	id, err := s.venues.SubmitSuggestion(ctx, deviceIDFromContext(ctx), sg)
	if err != nil {
		return nil, s.toStatus(ctx, "submit suggestion", err)
	}

	s.logger.Info(ctx, "Suggestion received", "id", id, "store", sg.StoreID, "field", sg.Field)
	return wrapperspb.String(id), nil
}

func (s *GRPCServer) PresignPhotoUpload(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	key, url, err := s.venues.PresignPhotoUpload(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, "presign photo upload", err)
	}

	return structpb.NewStruct(map[string]any{api.FieldKey: key, api.FieldURL: url})
}

func (s *GRPCServer) ListVenues(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list, err := s.venues.ListVenues(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "list venues", err)
	}

	items := make([]any, 0, len(list))
	for _, v := range list {
		m, err := venueToMap(v)
		if err != nil {
			return nil, s.toStatus(ctx, "list venues", err)
		}
		items = append(items, m)
	}

	return structpb.NewStruct(map[string]any{api.FieldVenues: items})
}

func (s *GRPCServer) GetVenue(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	v, err := s.venues.GetVenue(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, "get venue", err)
	}

	m, err := venueToMap(*v)
	if err != nil {
		return nil, s.toStatus(ctx, "get venue", err)
	}
	return structpb.NewStruct(m)
}

// toStatus maps service errors to gRPC codes. Internal details are logged,
// not returned.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, "unauthorized")
	default:
		s.logger.Error(ctx, op+" failed", "error", err)
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

func structToSuggestion(in *structpb.Struct) (*models.Suggestion, error) {
	f := in.GetFields()

	var value []byte
	if v, ok := f[api.FieldValue]; ok {
		var err error
		value, err = json.Marshal(v.AsInterface())
		if err != nil {
			return nil, err
		}
	}

	sg := &models.Suggestion{
		ClientID:  f[api.FieldID].GetStringValue(),
		StoreID:   f[api.FieldStoreID].GetStringValue(),
		Field:     f[api.FieldField].GetStringValue(),
		Value:     value,
		Comment:   f[api.FieldComment].GetStringValue(),
		Anonymous: f[api.FieldAnonymous].GetBoolValue(),
	}

	if raw := f[api.FieldCreatedAt].GetStringValue(); raw != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			sg.CreatedAt = t
		}
	}

	return sg, nil
}

// venueToMap converts v to the generic JSON shape structpb accepts.
func venueToMap(v models.Venue) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

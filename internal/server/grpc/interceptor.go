package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/api"
	"github.com/dmitrijs2005/cabinetmap/internal/common"
	"github.com/dmitrijs2005/cabinetmap/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const DeviceIDKey ctxKey = "deviceID"

func deviceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(DeviceIDKey).(string)
	return id
}

// accessTokenInterceptor verifies the access_token metadata on every
// non-public method and stores the device id in the context. The status
// messages "missing token" and "token expired" tell clients to
// re-authenticate.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if api.PublicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, common.ErrMissingToken.Error())
	}

	deviceID, err := auth.GetDeviceIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	return handler(context.WithValue(ctx, DeviceIDKey, deviceID), req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if s.metrics != nil {
		s.metrics.ObserveRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
	}
	return resp, err
}

package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/cabinetmap/internal/api"
	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/dmitrijs2005/cabinetmap/internal/server/metrics"
	"github.com/dmitrijs2005/cabinetmap/internal/server/models"
	"google.golang.org/grpc"
)

// Authenticator exchanges a device id for an access token.
type Authenticator interface {
	Authenticate(ctx context.Context, deviceID string) (string, error)
}

// Venues is the business surface behind the venue RPCs.
type Venues interface {
	AddFavorite(ctx context.Context, deviceID, storeID string) error
	RemoveFavorite(ctx context.Context, deviceID, storeID string) error
	RecordSearch(ctx context.Context, deviceID, query string) error
	SubmitSuggestion(ctx context.Context, deviceID string, sg *models.Suggestion) (string, error)
	PresignPhotoUpload(ctx context.Context, storeID string) (key, url string, err error)
	ListVenues(ctx context.Context) ([]models.Venue, error)
	GetVenue(ctx context.Context, id string) (*models.Venue, error)
}

type GRPCServer struct {
	address   string
	auth      Authenticator
	venues    Venues
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, as Authenticator, vs Venues, m *metrics.Metrics, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		auth:      as,
		venues:    vs,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds the grpc.Server with interceptors and the venue service
// registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))
	api.RegisterVenueServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	return srv.Serve(listen)
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/ValentinKolb/tKV/lib/db"
	"github.com/ValentinKolb/tKV/lib/db/engines/maple"
	"github.com/ValentinKolb/tKV/lib/store"
	"github.com/ValentinKolb/tKV/lib/store/dstore"
	"github.com/ValentinKolb/tKV/lib/store/lstore"
	"github.com/ValentinKolb/tKV/lib/store/mstore"
	"github.com/ValentinKolb/tKV/rpc/common"
	"github.com/ValentinKolb/tKV/rpc/serializer"
	"github.com/ValentinKolb/tKV/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the store it encapsulates and the adapter that handles requests for the store
type serverShard struct {
	Store   store.IIterableStore
	Adapter IRPCServerAdapter
}

// RPCServer routes requests from a transport to the shards it serves.
//
// Thread-safety: requests are handled concurrently. Serve must be called only once.
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
	metrics    *metrics.Set
	instanceID uuid.UUID

	mu            sync.Mutex
	nodeHost      *dragonboat.NodeHost
	metricsServer *http.Server
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	s := &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     xsync.NewMapOf[uint64, serverShard](),
		metrics:    metrics.NewSet(),
		instanceID: uuid.New(),
	}

	s.metrics.GetOrCreateGauge(fmt.Sprintf(`tkv_server_info{instance=%q}`, s.instanceID), func() float64 { return 1 })
	s.metrics.GetOrCreateGauge(`tkv_server_shards`, func() float64 { return float64(s.shards.Size()) })

	return s
}

// RegisterStore serves st as shard shardID. Every operation on it is recorded in the server metrics.
// An existing shard with the same ID is replaced.
func (s *RPCServer) RegisterStore(shardID uint64, st store.IIterableStore) {
	metered := mstore.NewMeteredStore(st, s.metrics, fmt.Sprintf("shard-%d", shardID))
	s.shards.Store(shardID, serverShard{
		Store:   metered,
		Adapter: NewIStoreServerAdapter(),
	})
}

// Handle decodes a request for a shard, runs it and returns the encoded response
func (s *RPCServer) Handle(shardId uint64, req []byte) []byte {
	var msg common.Message
	var respMsg *common.Message

	shard, ok := s.shards.Load(shardId)
	if !ok {
		respMsg = common.NewErrorResponse(fmt.Sprintf("shard %d not found", shardId))
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		// Let the adapter handle the request
		respMsg = shard.Adapter.Handle(&msg, shard.Store)
	}

	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response for shard %d: %v", shardId, err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
	}
	return val
}

// WriteMetrics writes the server metrics in the Prometheus text format
func (s *RPCServer) WriteMetrics(w http.ResponseWriter, _ *http.Request) {
	s.metrics.WritePrometheus(w)
	metrics.WriteProcessMetrics(w)
}

func (s *RPCServer) init() error {

	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	// Init logger
	if err := common.InitLoggers(s.config); err != nil {
		return err
	}

	Logger.Infof("Created RPC Server %s", s.instanceID)
	Logger.Infof(s.config.String())

	// Function to create a new database instance
	dbFactory := func() db.KVDB { return maple.NewMapleDB(nil) }

	// Only create the NodeHost if we have remote shards
	if s.config.HasRemoteShard() {
		nodeHost, err := dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return fmt.Errorf("failed to create node host: %w", err)
		}
		s.mu.Lock()
		s.nodeHost = nodeHost
		s.mu.Unlock()
	}

	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	/*
		Note: A single RPC Server can have any number of remote and or local shards.
		The following loop creates all the shards and stores them for the RPC server.
	*/

	for _, shardConfig := range s.config.Shards {
		switch shardConfig.Type {
		case common.ShardTypeLocalIStore:
			s.RegisterStore(shardConfig.ShardID, lstore.NewLocalStore(dbFactory))
			Logger.Infof("created local store for shard %d", shardConfig.ShardID)

		case common.ShardTypeRemoteIStore:
			// Start Raft for the shard
			if err := s.nodeHost.StartConcurrentReplica(
				s.config.ClusterMembers,
				false,
				dstore.CreateStateMaschineFactory(dbFactory),
				s.config.ToDragonboatConfig(shardConfig.ShardID),
			); err != nil {
				return fmt.Errorf("failed to start shard %d: %w", shardConfig.ShardID, err)
			}

			s.RegisterStore(shardConfig.ShardID, dstore.NewDistributedStore(s.nodeHost, shardConfig.ShardID, timeout, s.config.PageSize))
			Logger.Infof("created remote store for shard %d", shardConfig.ShardID)

		default:
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}
	}

	Logger.Infof("tKV setup completed successfully")

	// Configure the transport layer
	s.transport.RegisterHandler(s.Handle)

	return nil
}

// serveMetrics exposes the metrics on MetricsEndpoint until the server is closed
func (s *RPCServer) serveMetrics() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", s.WriteMetrics)

	server := &http.Server{
		Addr:              s.config.MetricsEndpoint,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.metricsServer = server
	s.mu.Unlock()

	Logger.Infof("Serving metrics on %s/metrics", s.config.MetricsEndpoint)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		Logger.Errorf("metrics server failed: %v", err)
	}
}

// Serve starts the RPC server
// This function will also initialize the server plus the shards and start the transport layer.
// It blocks until the transport stops.
func (s *RPCServer) Serve() error {
	if err := s.init(); err != nil {
		return err
	}
	if s.config.MetricsEndpoint != "" {
		go s.serveMetrics()
	}
	return s.transport.Listen(s.config)
}

// Close stops the transport, the metrics endpoint and the RAFT node host
func (s *RPCServer) Close() error {
	err := s.transport.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metricsServer != nil {
		err = errors.Join(err, s.metricsServer.Close())
		s.metricsServer = nil
	}
	if s.nodeHost != nil {
		s.nodeHost.Close()
		s.nodeHost = nil
	}
	return err
}

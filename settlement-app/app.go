package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/zenith-rollup/settlement/metrics"
	apisrv "github.com/zenith-rollup/settlement/server/api"
	apimw "github.com/zenith-rollup/settlement/server/api/middleware"
	"github.com/zenith-rollup/settlement/settlement-app/config"
	"github.com/zenith-rollup/settlement/x/bank"
	"github.com/zenith-rollup/settlement/x/events"
	"github.com/zenith-rollup/settlement/x/gateway"
	"github.com/zenith-rollup/settlement/x/ledger"
	"github.com/zenith-rollup/settlement/x/queue"
	"github.com/zenith-rollup/settlement/x/rollup"
	"github.com/zenith-rollup/settlement/x/rollup/codec"
	sethttp "github.com/zenith-rollup/settlement/x/rollup/http"
	"github.com/zenith-rollup/settlement/x/rollup/verifier"
	"github.com/zenith-rollup/settlement/x/sysconfig"
)

// App wires the settlement components behind the HTTP API.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	emitter *events.Emitter
	ledger  *bank.Memory
	sys     *sysconfig.SystemConfig
	queue   *queue.MessageQueue
	gateway *gateway.Gateway
	chain   *rollup.Chain

	apiServer *apisrv.Server

	cancel context.CancelFunc
}

// NewApp creates a new application instance
func NewApp(_ context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	app := &App{
		cfg: cfg,
		log: log.With().Str("component", "app").Logger(),
	}

	genesis, err := config.LoadGenesis(cfg.Chain.GenesisPath)
	if err != nil {
		return nil, err
	}

	if err := app.initializeSettlement(log, genesis); err != nil {
		return nil, fmt.Errorf("failed to initialize settlement state: %w", err)
	}
	if err := app.initializeAPIServer(log); err != nil {
		return nil, fmt.Errorf("failed to initialize API server: %w", err)
	}
	return app, nil
}

// initializeSettlement builds the component graph from the genesis file:
// bank, system config, message queue, gateway, verifiers, and the chain,
// then imports the genesis batch and seeds allow-lists and balances.
func (a *App) initializeSettlement(log zerolog.Logger, genesis *config.Genesis) error {
	a.emitter = events.NewEmitter(log)
	a.ledger = bank.NewMemory()

	owner := genesis.OwnerAddress()
	now := uint64(time.Now().Unix())

	sys, err := sysconfig.New(log, a.emitter, owner, sysconfig.Params{
		MaxGasLimit:               genesis.Params.MaxGasLimit,
		BaseFeeOverhead:           genesis.BaseFeeOverhead(),
		BaseFeeScalar:             genesis.BaseFeeScalar(),
		MaxDelayEnterEnforcedMode: genesis.Params.MaxDelayEnterEnforcedMode,
		MaxDelayMessageQueue:      genesis.Params.MaxDelayMessageQueue,
	})
	if err != nil {
		return err
	}
	a.sys = sys

	system := genesis.System
	a.queue = queue.New(log, sys, a.emitter, queue.Capabilities{
		Messenger: common.HexToAddress(system.Messenger),
		Gateway:   common.HexToAddress(system.Gateway),
		Rollup:    common.HexToAddress(system.Rollup),
	}, queue.NewMetrics())

	a.gateway = gateway.New(log, gateway.Config{
		Self:     common.HexToAddress(system.Gateway),
		Owner:    owner,
		FeeVault: common.HexToAddress(system.FeeVault),
		ChainID:  genesis.ChainID,
	}, a.queue, a.ledger, nil, a.emitter)

	proofs, err := a.buildVerifier(log)
	if err != nil {
		return err
	}
	blobs, err := verifier.NewBlobVerifier()
	if err != nil {
		return err
	}

	chain, err := rollup.New(log, rollup.Config{
		Self:            common.HexToAddress(system.Rollup),
		Owner:           owner,
		ChainID:         genesis.ChainID,
		MaxNumTxInChunk: genesis.MaxNumTxInChunk,
	}, sys, a.queue, proofs, blobs, nil, a.emitter, rollup.NewMetrics())
	if err != nil {
		return err
	}
	a.chain = chain

	ownerCall := ledger.Call{Caller: owner, Origin: owner, Time: now}
	if err := a.importGenesisBatch(ownerCall, genesis); err != nil {
		return err
	}

	for _, addr := range genesis.Sequencers {
		if err := chain.AddSequencer(ownerCall, common.HexToAddress(addr)); err != nil {
			return fmt.Errorf("failed to add sequencer %s: %w", addr, err)
		}
	}
	for _, addr := range genesis.Provers {
		if err := chain.AddProver(ownerCall, common.HexToAddress(addr)); err != nil {
			return fmt.Errorf("failed to add prover %s: %w", addr, err)
		}
	}
	for _, acct := range genesis.Accounts {
		balance := new(uint256.Int)
		if err := balance.SetFromDecimal(acct.Balance); err != nil {
			return fmt.Errorf("invalid balance for account %s: %w", acct.Address, err)
		}
		a.ledger.Mint(common.HexToAddress(acct.Address), balance)
	}

	a.log.Info().
		Uint64("chain_id", genesis.ChainID).
		Int("sequencers", len(genesis.Sequencers)).
		Int("provers", len(genesis.Provers)).
		Int("funded_accounts", len(genesis.Accounts)).
		Msg("Settlement state initialized")
	return nil
}

func (a *App) importGenesisBatch(call ledger.Call, genesis *config.Genesis) error {
	header := &codec.ChunkedHeader{
		HeaderVersion: codec.VersionGenesis,
		DataHash:      common.HexToHash(genesis.DataHash),
	}
	return a.chain.ImportGenesisBatch(call, header.Encode(), common.HexToHash(genesis.StateRoot))
}

// buildVerifier constructs the configured bundle proof verifier.
func (a *App) buildVerifier(log zerolog.Logger) (verifier.Verifier, error) {
	switch a.cfg.Verifier.Type {
	case "aggregation":
		vk, err := hexutil.Decode(a.cfg.Verifier.VerifyingKey)
		if err != nil {
			return nil, fmt.Errorf("invalid verifier.verifying_key: %w", err)
		}
		return verifier.NewAggregationVerifier(log, vk), nil
	case "sgx":
		signers := make([]common.Address, 0, len(a.cfg.Verifier.AttestedSigners))
		for _, s := range a.cfg.Verifier.AttestedSigners {
			if !common.IsHexAddress(s) {
				return nil, fmt.Errorf("invalid attested signer address %q", s)
			}
			signers = append(signers, common.HexToAddress(s))
		}
		return verifier.NewSGXVerifier(log, signers), nil
	default:
		return nil, fmt.Errorf("unknown verifier type %q", a.cfg.Verifier.Type)
	}
}

// initializeAPIServer sets up the HTTP API server with all endpoints
func (a *App) initializeAPIServer(log zerolog.Logger) error {
	apiCfg := apisrv.Config{
		ListenAddr:        a.cfg.API.ListenAddr,
		ReadHeaderTimeout: a.cfg.API.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.API.ReadTimeout,
		WriteTimeout:      a.cfg.API.WriteTimeout,
		IdleTimeout:       a.cfg.API.IdleTimeout,
		MaxHeaderBytes:    a.cfg.API.MaxHeaderBytes,
	}
	s := apisrv.NewServer(apiCfg, log)
	s.Use(apimw.Recover(a.log))
	s.Use(apimw.RequestID())
	s.Use(apimw.Logger(a.log))

	s.Router.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	s.Router.HandleFunc("/ready", a.handleReady).Methods(http.MethodGet)

	if a.cfg.Metrics.Enabled {
		s.Router.Handle(a.cfg.Metrics.Path,
			promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	handler := sethttp.NewHandler(a.chain, a.queue, log)
	handler.RegisterMux(s.Router)

	a.apiServer = s
	return nil
}

// Run starts the application and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	go a.eventLogger(runCtx)

	go func() {
		if err := a.apiServer.Start(runCtx); err != nil {
			a.log.Error().Err(err).Msg("API server error")
		}
	}()

	return a.runWithGracefulShutdown(runCtx)
}

// eventLogger drains the settlement event feed into the debug log so
// every emission is observable without an external indexer.
func (a *App) eventLogger(ctx context.Context) {
	ch := make(chan events.Envelope, 256)
	sub := a.emitter.Subscribe(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-ch:
			a.log.Debug().
				Time("emitted_at", env.EmittedAt).
				Type("event", env.Payload).
				Interface("payload", env.Payload).
				Msg("Settlement event")
		}
	}
}

// runWithGracefulShutdown handles shutdown signals.
func (a *App) runWithGracefulShutdown(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info().Msg("Settlement node started successfully")

	select {
	case <-ctx.Done():
		a.log.Info().Msg("Context canceled, initiating shutdown")
	case sig := <-sigCh:
		a.log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	}

	if a.cancel != nil {
		a.cancel()
	}

	return a.shutdown()
}

// shutdown closes the event feed after the HTTP server has drained.
func (a *App) shutdown() error {
	a.log.Info().Msg("Initiating graceful shutdown")

	a.emitter.Close()

	a.log.Info().Msg("Graceful shutdown complete")
	return nil
}

// handleHealth responds to health check requests.
func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339))
}

// handleReady reports readiness: the node serves reads once the genesis
// batch is in place.
func (a *App) handleReady(w http.ResponseWriter, _ *http.Request) {
	status := "ready"
	code := http.StatusOK
	if !a.chain.GenesisImported() {
		status = "genesis_not_imported"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":"%s","version":"%s"}`, status, Version)
}

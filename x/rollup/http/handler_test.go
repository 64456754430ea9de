package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zenith-rollup/settlement/x/ledger"
	"github.com/zenith-rollup/settlement/x/queue"
	"github.com/zenith-rollup/settlement/x/rollup"
	"github.com/zenith-rollup/settlement/x/rollup/codec"
	"github.com/zenith-rollup/settlement/x/rollup/verifier"
	"github.com/zenith-rollup/settlement/x/sysconfig"
)

var (
	owner     = common.HexToAddress("0xee")
	sequencer = common.HexToAddress("0xa1")
	chainSelf = common.HexToAddress("0xc3")
	messenger = common.HexToAddress("0xc1")
)

type acceptVerifier struct{}

func (acceptVerifier) Verify(context.Context, []byte, verifier.PublicInput) error { return nil }

type hashBinder struct{}

func (hashBinder) VerifySidecar(sc verifier.BlobSidecar) (common.Hash, error) {
	return verifier.KZGToVersionedHash(sc.Commitment), nil
}

func newFixture(t *testing.T) (*rollup.Chain, *queue.MessageQueue) {
	t.Helper()
	log := zerolog.New(io.Discard)

	sys, err := sysconfig.New(log, nil, owner, sysconfig.Params{
		MaxGasLimit:               1_000_000,
		BaseFeeOverhead:           uint256.NewInt(100),
		BaseFeeScalar:             uint256.NewInt(1e18),
		MaxDelayEnterEnforcedMode: 3_600,
		MaxDelayMessageQueue:      1_800,
	})
	require.NoError(t, err)

	q := queue.New(log, sys, nil, queue.Capabilities{Messenger: messenger, Rollup: chainSelf}, nil)

	chain, err := rollup.New(log, rollup.Config{
		Self:            chainSelf,
		Owner:           owner,
		ChainID:         53,
		MaxNumTxInChunk: 10,
	}, sys, q, acceptVerifier{}, hashBinder{}, nil, nil, nil)
	require.NoError(t, err)

	genesis := &codec.ChunkedHeader{DataHash: common.HexToHash("0x01")}
	call := ledger.Call{Caller: owner, Origin: owner, Time: 1_700_000_000}
	require.NoError(t, chain.ImportGenesisBatch(call, genesis.Encode(), common.HexToHash("0xaa")))

	_, err = q.AppendCrossDomainMessage(ledger.Call{Caller: messenger, Time: 1_700_000_010},
		common.HexToAddress("0xdd"), 100_000, nil)
	require.NoError(t, err)

	require.NoError(t, chain.AddSequencer(call, sequencer))
	require.NoError(t, chain.CommitBatches(ledger.Call{Caller: sequencer, Time: 1_700_000_020},
		codec.VersionChunked, genesis.Encode(), rollup.CommitPayload{
			Chunks: [][]byte{codec.Chunk{NumTxs: 1}.Encode()},
		}))
	return chain, q
}

func newRouter(t *testing.T) *mux.Router {
	t.Helper()
	chain, q := newFixture(t)
	r := mux.NewRouter()
	NewHandler(chain, q, zerolog.New(io.Discard)).RegisterMux(r)
	return r
}

func get(t *testing.T, r *mux.Router, url string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandler_ChainStatus(t *testing.T) {
	r := newRouter(t)

	rec, body := get(t, r, routeChainStatus)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), body["last_committed_batch_index"])
	require.Equal(t, float64(0), body["last_finalized_batch_index"])
	require.Equal(t, true, body["genesis_imported"])
	require.Equal(t, false, body["enforced_mode"])
}

func TestHandler_BatchByIndex(t *testing.T) {
	r := newRouter(t)

	rec, body := get(t, r, "/v1/batches/0")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["finalized"])
	require.NotEmpty(t, body["batch_hash"])
	require.NotEmpty(t, body["state_root"])

	rec, _ = get(t, r, "/v1/batches/9")
	require.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/batches/notanumber", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_QueueStatus(t *testing.T) {
	r := newRouter(t)

	rec, body := get(t, r, routeQueueStatus)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), body["next_queue_index"])
	require.Equal(t, float64(0), body["next_unfinalized_index"])
	require.Equal(t, float64(1), body["pending_count"])
}

func TestHandler_MessageByIndex(t *testing.T) {
	r := newRouter(t)

	rec, body := get(t, r, "/v1/queue/messages/0")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, body["rolling_hash"])
	require.Equal(t, float64(1_700_000_010), body["timestamp"])
	require.Equal(t, false, body["finalized"])

	rec, _ = get(t, r, "/v1/queue/messages/7")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_QueueFee(t *testing.T) {
	r := newRouter(t)

	// scalar 1e18 and overhead 100: fee = (1000 + 100) * 30000.
	rec, body := get(t, r, routeQueueFee+"?gas_limit=30000&l1_base_fee=1000")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, strconv.Itoa(1100*30_000), body["fee"])

	rec, _ = get(t, r, routeQueueFee)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = get(t, r, routeQueueFee+"?gas_limit=30000&l1_base_fee=abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

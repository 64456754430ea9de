// Package http exposes the read-only settlement API: chain and queue
// cursors, persisted batch records, queued messages, and fee quotes for
// off-chain tooling.
package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	apicommon "github.com/zenith-rollup/settlement/server/api"
	"github.com/zenith-rollup/settlement/x/queue"
	"github.com/zenith-rollup/settlement/x/rollup"
)

type Handler struct {
	chain *rollup.Chain
	queue *queue.MessageQueue
	log   zerolog.Logger
}

func NewHandler(chain *rollup.Chain, q *queue.MessageQueue, log zerolog.Logger) *Handler {
	return &Handler{
		chain: chain,
		queue: q,
		log:   log.With().Str("component", "settlement-http").Logger(),
	}
}

type chainStatusResp struct {
	LastCommittedBatchIndex uint64 `json:"last_committed_batch_index"`
	LastFinalizedBatchIndex uint64 `json:"last_finalized_batch_index"`
	LastFinalizeTimestamp   uint64 `json:"last_finalize_timestamp"`
	EnforcedMode            bool   `json:"enforced_mode"`
	Paused                  bool   `json:"paused"`
	GenesisImported         bool   `json:"genesis_imported"`
	MaxNumTxInChunk         uint64 `json:"max_num_tx_in_chunk"`
}

func (h *Handler) handleChainStatus(w http.ResponseWriter, _ *http.Request) {
	apicommon.WriteJSON(w, http.StatusOK, chainStatusResp{
		LastCommittedBatchIndex: h.chain.LastCommittedBatchIndex(),
		LastFinalizedBatchIndex: h.chain.LastFinalizedBatchIndex(),
		LastFinalizeTimestamp:   h.chain.LastFinalizeTimestamp(),
		EnforcedMode:            h.chain.EnforcedModeEnabled(),
		Paused:                  h.chain.Paused(),
		GenesisImported:         h.chain.GenesisImported(),
		MaxNumTxInChunk:         h.chain.MaxNumTxInChunk(),
	})
}

type batchResp struct {
	BatchIndex   uint64 `json:"batch_index"`
	BatchHash    string `json:"batch_hash"`
	Finalized    bool   `json:"finalized"`
	StateRoot    string `json:"state_root,omitempty"`
	WithdrawRoot string `json:"withdraw_root,omitempty"`
}

func (h *Handler) handleBatchByIndex(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	hash, ok := h.chain.BatchHash(index)
	if !ok {
		apicommon.WriteError(w, r, http.StatusNotFound, "batch_not_found",
			"no persisted hash at this index; intermediate batches are reconstructed from events", nil)
		return
	}

	resp := batchResp{
		BatchIndex: index,
		BatchHash:  hash.Hex(),
		Finalized:  index <= h.chain.LastFinalizedBatchIndex(),
	}
	if st, ok := h.chain.FinalizedStateAt(index); ok {
		resp.StateRoot = st.StateRoot.Hex()
		resp.WithdrawRoot = st.WithdrawRoot.Hex()
	}
	apicommon.WriteJSON(w, http.StatusOK, resp)
}

type queueStatusResp struct {
	NextQueueIndex       uint64 `json:"next_queue_index"`
	NextUnfinalizedIndex uint64 `json:"next_unfinalized_index"`
	PendingCount         uint64 `json:"pending_count"`
}

func (h *Handler) handleQueueStatus(w http.ResponseWriter, _ *http.Request) {
	apicommon.WriteJSON(w, http.StatusOK, queueStatusResp{
		NextQueueIndex:       h.queue.NextQueueIndex(),
		NextUnfinalizedIndex: h.queue.NextUnfinalizedIndex(),
		PendingCount:         h.queue.PendingCount(),
	})
}

type messageResp struct {
	QueueIndex  uint64 `json:"queue_index"`
	RollingHash string `json:"rolling_hash"`
	Timestamp   uint64 `json:"timestamp"`
	Finalized   bool   `json:"finalized"`
}

func (h *Handler) handleMessageByIndex(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	rollingHash, err := h.queue.MessageRollingHash(index)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusNotFound, "message_not_found", err.Error(), nil)
		return
	}
	timestamp, err := h.queue.MessageEnqueueTimestamp(index)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusNotFound, "message_not_found", err.Error(), nil)
		return
	}

	apicommon.WriteJSON(w, http.StatusOK, messageResp{
		QueueIndex:  index,
		RollingHash: rollingHash.Hex(),
		Timestamp:   timestamp,
		Finalized:   index < h.queue.NextUnfinalizedIndex(),
	})
}

type feeResp struct {
	GasLimit  uint64 `json:"gas_limit"`
	L1BaseFee string `json:"l1_base_fee"`
	Fee       string `json:"fee"`
}

func (h *Handler) handleQueueFee(w http.ResponseWriter, r *http.Request) {
	gasLimit, err := strconv.ParseUint(r.URL.Query().Get("gas_limit"), 10, 64)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_gas_limit",
			"provide ?gas_limit= as a decimal integer", nil)
		return
	}

	l1BaseFee := uint256.NewInt(0)
	if raw := r.URL.Query().Get("l1_base_fee"); raw != "" {
		if err := l1BaseFee.SetFromDecimal(raw); err != nil {
			apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_l1_base_fee",
				"l1_base_fee must be a decimal integer in wei", nil)
			return
		}
	}

	fee := h.queue.EstimateCrossDomainMessageFee(l1BaseFee, gasLimit)
	apicommon.WriteJSON(w, http.StatusOK, feeResp{
		GasLimit:  gasLimit,
		L1BaseFee: l1BaseFee.Dec(),
		Fee:       fee.Dec(),
	})
}

func pathIndex(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	index, err := strconv.ParseUint(mux.Vars(r)["index"], 10, 64)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_index",
			"index must be a decimal integer", nil)
		return 0, false
	}
	return index, true
}

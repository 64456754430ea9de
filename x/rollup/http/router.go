package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterMux binds gorilla/mux routes.
func (h *Handler) RegisterMux(r *mux.Router) {
	r.HandleFunc(routeChainStatus, h.handleChainStatus).Methods(http.MethodGet).Name(routeNameChainStatus)
	r.HandleFunc(routeBatchByIndex, h.handleBatchByIndex).Methods(http.MethodGet).Name(routeNameBatchByIndex)
	r.HandleFunc(routeQueueStatus, h.handleQueueStatus).Methods(http.MethodGet).Name(routeNameQueueStatus)
	r.HandleFunc(routeMessageByIndex, h.handleMessageByIndex).Methods(http.MethodGet).Name(routeNameMessageByIndex)
	r.HandleFunc(routeQueueFee, h.handleQueueFee).Methods(http.MethodGet).Name(routeNameQueueFee)
}

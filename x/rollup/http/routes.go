package http

// Route patterns for the settlement read API.
const (
	routeChainStatus    = "/v1/chain/status"
	routeBatchByIndex   = "/v1/batches/{index}"
	routeQueueStatus    = "/v1/queue/status"
	routeMessageByIndex = "/v1/queue/messages/{index}"
	routeQueueFee       = "/v1/queue/fee"
)

// Route names for mux URL building.
const (
	routeNameChainStatus    = "chain_status"
	routeNameBatchByIndex   = "batch_by_index"
	routeNameQueueStatus    = "queue_status"
	routeNameMessageByIndex = "message_by_index"
	routeNameQueueFee       = "queue_fee"
)

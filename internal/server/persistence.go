package server

import (
	"github.com/Brownie44l1/embedhttp/internal/request"
	"github.com/Brownie44l1/embedhttp/internal/response"
	"github.com/Brownie44l1/embedhttp/internal/state"
)

// shouldKeepOpen decides whether the worker reads another request after
// writing resp.
func shouldKeepOpen(req *request.Request, resp *response.Response, current state.State) bool {
	if resp.Closing() {
		return false
	}

	if req == nil || !req.KeepAlive {
		return false
	}

	return current == state.Running
}

package api

import (
	"github.com/Domenick1991/flightbooking/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
)

// statusOf maps an error kind to HTTP through its gRPC code, the same way
// the gateway translates errors from gRPC services.
func statusOf(err error) int {
	return runtime.HTTPStatusFromCode(apperr.GRPCCode(apperr.KindOf(err)))
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": apperr.Message(err)})
}

package http

import (
	"context"
	"net/http"

	"github.com/Daniel-Kav/order-microservice/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
)

// GraphQLHandler serves the query/mutation surface over a single POST
// endpoint.
type GraphQLHandler struct {
	schema graphql.Schema
}

func NewGraphQLHandler(lc *usecase.OrderLifecycle) (*GraphQLHandler, error) {
	schema, err := newSchema(lc)
	if err != nil {
		return nil, err
	}
	return &GraphQLHandler{schema: schema}, nil
}

type graphqlReq struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *GraphQLHandler) Serve(c *gin.Context) {
	var req graphqlReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed graphql request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), gatewayTimeout)
	defer cancel()

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})
	c.JSON(http.StatusOK, result)
}

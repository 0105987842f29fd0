package http

import (
	"fmt"

	domain "github.com/Daniel-Kav/order-microservice/internal/entity"
	"github.com/Daniel-Kav/order-microservice/internal/usecase"
	"github.com/graphql-go/graphql"
)

// newSchema builds the GraphQL surface: queries orders/order/ordersByUser
// and mutations createOrder/updateOrder/confirmPayment/cancelOrder/
// deleteOrder, all thin glue over the lifecycle.
func newSchema(lc *usecase.OrderLifecycle) (graphql.Schema, error) {
	orderStatusEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "OrderStatus",
		Values: graphql.EnumValueConfigMap{
			"PENDING":    &graphql.EnumValueConfig{Value: string(domain.StatusPending)},
			"PROCESSING": &graphql.EnumValueConfig{Value: string(domain.StatusProcessing)},
			"SHIPPED":    &graphql.EnumValueConfig{Value: string(domain.StatusShipped)},
			"DELIVERED":  &graphql.EnumValueConfig{Value: string(domain.StatusDelivered)},
			"CANCELLED":  &graphql.EnumValueConfig{Value: string(domain.StatusCancelled)},
		},
	})

	paymentStatusEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "PaymentStatus",
		Values: graphql.EnumValueConfigMap{
			"PENDING":   &graphql.EnumValueConfig{Value: string(domain.PaymentPending)},
			"SUCCEEDED": &graphql.EnumValueConfig{Value: string(domain.PaymentSucceeded)},
			"FAILED":    &graphql.EnumValueConfig{Value: string(domain.PaymentFailed)},
			"REFUNDED":  &graphql.EnumValueConfig{Value: string(domain.PaymentRefunded)},
		},
	})

	orderItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderItem",
		Fields: graphql.Fields{
			"productId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"price":     &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"quantity":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	shippingAddressType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ShippingAddress",
		Fields: graphql.Fields{
			"street":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"city":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"state":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"zipCode": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"country": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"userId":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"items":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(orderItemType)))},
			"totalAmount": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"status": &graphql.Field{
				Type: graphql.NewNonNull(orderStatusEnum),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(orderSource(p).Status), nil
				},
			},
			"paymentStatus": &graphql.Field{
				Type: graphql.NewNonNull(paymentStatusEnum),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(orderSource(p).PaymentStatus), nil
				},
			},
			"paymentIntentId": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if o := orderSource(p); o.PaymentIntentID != "" {
						return o.PaymentIntentID, nil
					}
					return nil, nil
				},
			},
			"shippingAddress": &graphql.Field{Type: graphql.NewNonNull(shippingAddressType)},
			"createdAt":       &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"updatedAt":       &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		},
	})

	orderItemInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OrderItemInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"productId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"name":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"price":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"quantity":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	shippingAddressInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ShippingAddressInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"street":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"city":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"state":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"zipCode": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"country": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	createOrderInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateOrderInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"userId":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"items":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(orderItemInput)))},
			"shippingAddress": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(shippingAddressInput)},
		},
	})

	updateOrderInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateOrderInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"status": &graphql.InputObjectFieldConfig{Type: orderStatusEnum},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"orders": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(orderType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return lc.FindAll(p.Context)
				},
			},
			"order": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return lc.FindOne(p.Context, p.Args["id"].(string))
				},
			},
			"ordersByUser": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(orderType))),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return lc.FindByUser(p.Context, p.Args["userId"].(string))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createOrder": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"createOrderInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createOrderInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in, err := decodeCreateOrderInput(p.Args["createOrderInput"])
					if err != nil {
						return nil, err
					}
					return lc.CreateOrder(p.Context, in)
				},
			},
			"updateOrder": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"updateOrderInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateOrderInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					args, _ := p.Args["updateOrderInput"].(map[string]interface{})
					id, _ := args["id"].(string)
					var status *domain.OrderStatus
					if raw, ok := args["status"].(string); ok {
						s, err := domain.ParseOrderStatus(raw)
						if err != nil {
							return nil, err
						}
						status = &s
					}
					return lc.UpdateOrder(p.Context, id, status)
				},
			},
			"confirmPayment": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"orderId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return lc.ConfirmPayment(p.Context, p.Args["orderId"].(string))
				},
			},
			"cancelOrder": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"orderId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return lc.CancelOrder(p.Context, p.Args["orderId"].(string))
				},
			},
			"deleteOrder": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return lc.DeleteOrder(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType, Mutation: mutationType})
}

func orderSource(p graphql.ResolveParams) *domain.Order {
	switch o := p.Source.(type) {
	case *domain.Order:
		return o
	case domain.Order:
		return &o
	default:
		return &domain.Order{}
	}
}

func decodeCreateOrderInput(raw interface{}) (usecase.CreateOrderInput, error) {
	args, _ := raw.(map[string]interface{})
	in := usecase.CreateOrderInput{}
	in.UserID, _ = args["userId"].(string)

	rawItems, _ := args["items"].([]interface{})
	in.Items = make([]domain.OrderItem, 0, len(rawItems))
	for i, ri := range rawItems {
		m, _ := ri.(map[string]interface{})
		item := domain.OrderItem{}
		item.ProductID, _ = m["productId"].(string)
		item.Name, _ = m["name"].(string)
		item.Price, _ = m["price"].(float64)
		item.Quantity, _ = m["quantity"].(int)
		if item.Price < 0 {
			return in, fmt.Errorf("items[%d]: price must be >= 0", i)
		}
		if item.Quantity < 1 {
			return in, fmt.Errorf("items[%d]: quantity must be >= 1", i)
		}
		in.Items = append(in.Items, item)
	}

	addr, _ := args["shippingAddress"].(map[string]interface{})
	in.ShippingAddress.Street, _ = addr["street"].(string)
	in.ShippingAddress.City, _ = addr["city"].(string)
	in.ShippingAddress.State, _ = addr["state"].(string)
	in.ShippingAddress.ZipCode, _ = addr["zipCode"].(string)
	in.ShippingAddress.Country, _ = addr["country"].(string)
	return in, nil
}

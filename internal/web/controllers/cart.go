package controllers

import (
	"context"
	"net/http"
	"strconv"

	"webshop/internal/apperr"
	"webshop/internal/models"
	"webshop/internal/web/apiclient"
	"webshop/internal/web/views"

	"golang.org/x/sync/errgroup"
)

// cartData loads the products of the session cart concurrently. Lines whose
// product no longer exists are dropped from the cart.
func (c *Controller) cartData(ctx context.Context) (views.CartData, error) {
	items := c.state.Cart(ctx)
	products := make([]*models.Product, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, item := range items {
		g.Go(func() error {
			product, err := c.api.GetProduct(gctx, item.ProductID)
			if apiclient.IsKind(err, apperr.KindNotFound) {
				return nil
			}
			products[i] = product
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return views.CartData{}, err
	}

	var data views.CartData
	for i, item := range items {
		if products[i] == nil {
			c.state.SetCartQuantity(ctx, item.ProductID, 0)
			continue
		}
		line := views.CartLine{
			Product:   *products[i],
			Quantity:  item.Quantity,
			LineTotal: products[i].Price * float64(item.Quantity),
		}
		data.Lines = append(data.Lines, line)
		data.Total += line.LineTotal
	}
	return data, nil
}

func (c *Controller) Cart(w http.ResponseWriter, r *http.Request) {
	data, err := c.cartData(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "cart", "Cart", data)
}

func (c *Controller) AddToCart(w http.ResponseWriter, r *http.Request) {
	productID, err := formUUID(r, "product_id")
	if err != nil {
		c.fail(w, r, err)
		return
	}
	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil || quantity < 1 {
		quantity = 1
	}

	product, err := c.api.GetProduct(r.Context(), productID)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.state.AddToCart(r.Context(), productID, quantity)
	c.redirect(w, r, "/cart", product.Name+" was added to your cart.")
}

// UpdateCart sets the quantity of a line; zero removes it.
func (c *Controller) UpdateCart(w http.ResponseWriter, r *http.Request) {
	productID, err := formUUID(r, "product_id")
	if err != nil {
		c.fail(w, r, err)
		return
	}
	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		c.fail(w, r, apperr.Validation("quantity must be a number"))
		return
	}

	c.state.SetCartQuantity(r.Context(), productID, quantity)
	c.redirect(w, r, "/cart", "")
}

func (c *Controller) checkoutData(ctx context.Context) (views.CheckoutData, error) {
	var data views.CheckoutData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Cart, err = c.cartData(gctx)
		return err
	})
	g.Go(func() error {
		addresses, err := c.api.ListAddresses(gctx, apiclient.PageQuery{Limit: 100})
		if err != nil {
			return err
		}
		data.Addresses = addresses.Items
		return nil
	})
	return data, g.Wait()
}

func (c *Controller) Checkout(w http.ResponseWriter, r *http.Request) {
	if len(c.state.Cart(r.Context())) == 0 {
		c.redirect(w, r, "/cart", "")
		return
	}
	data, err := c.checkoutData(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "checkout", "Checkout", data)
}

// PlaceOrder turns the cart into an order for the chosen address.
func (c *Controller) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items := c.state.Cart(ctx)
	if len(items) == 0 {
		c.redirect(w, r, "/cart", "Your cart is empty.")
		return
	}

	addressID, err := formUUID(r, "address_id")
	if err != nil {
		c.fail(w, r, err)
		return
	}

	req := models.CreateOrderRequest{AddressID: addressID}
	for _, item := range items {
		req.Items = append(req.Items, models.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := c.api.CreateOrder(ctx, req)
	if err != nil {
		if msg, status, ok := formError(err); ok {
			data, loadErr := c.checkoutData(ctx)
			if loadErr != nil {
				c.fail(w, r, loadErr)
				return
			}
			c.renderForm(w, r, status, "checkout", "Checkout", msg, data)
			return
		}
		c.fail(w, r, err)
		return
	}

	c.state.ClearCart(ctx)
	c.redirect(w, r, "/orders/"+order.ID.String(), "Thank you! Your order has been placed.")
}

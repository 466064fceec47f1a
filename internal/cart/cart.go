// Package cart merges and dedupes order lines by product identity.
package cart

import "errors"

// ErrInvalidQuantity rejects non-positive quantities on AddLine.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// Line is one cart line. Lines are unique by ProductID within a cart.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is a user's cart. It is a value: AddLine and RemoveLine return a
// new cart and leave the input untouched.
type Cart struct {
	UserID string `json:"user_id"`
	Lines  []Line `json:"lines"`
}

// New returns an empty cart for a user.
func New(userID string) Cart {
	return Cart{UserID: userID}
}

// AddLine adds quantity of a product. A second add for the same product
// increments the existing line instead of appending a duplicate.
func AddLine(c Cart, productID string, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, ErrInvalidQuantity
	}
	next := clone(c)
	for i := range next.Lines {
		if next.Lines[i].ProductID == productID {
			next.Lines[i].Quantity += quantity
			return next, nil
		}
	}
	next.Lines = append(next.Lines, Line{ProductID: productID, Quantity: quantity})
	return next, nil
}

// RemoveLine drops the line for productID. Removing an absent product is a
// no-op, not an error.
func RemoveLine(c Cart, productID string) Cart {
	next := Cart{UserID: c.UserID}
	for _, line := range c.Lines {
		if line.ProductID != productID {
			next.Lines = append(next.Lines, line)
		}
	}
	return next
}

// IsEmpty reports whether the cart holds no lines. The caller decides
// whether to delete the container.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func clone(c Cart) Cart {
	next := Cart{UserID: c.UserID}
	if len(c.Lines) > 0 {
		next.Lines = make([]Line, len(c.Lines))
		copy(next.Lines, c.Lines)
	}
	return next
}

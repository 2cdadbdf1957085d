package resources

import (
	"fmt"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/services"
)

// NoticeFor picks the toast for a basket change. Quantity updates are
// silent and return nil.
func NoticeFor(change services.Change) *models.Notice {
	switch change.Kind {
	case services.ChangeRemoved:
		return &models.Notice{
			Title:       "Product removed",
			Description: "The product has been removed from your basket.",
			Variant:     models.NoticeDefault,
		}
	case services.ChangeAdded, services.ChangeIncremented:
		return &models.Notice{
			Title:       "Added to basket",
			Description: fmt.Sprintf("%s has been added to your basket.", change.Product.Name),
			Variant:     models.NoticeDefault,
		}
	case services.ChangeCreated:
		return &models.Notice{
			Title:       "Project basket created!",
			Description: fmt.Sprintf("Added %d required items to your basket.", change.Count),
			Variant:     models.NoticeDefault,
		}
	case services.ChangeCleared:
		return CheckoutNotice()
	}
	return nil
}

// CheckoutNotice confirms a placed order.
func CheckoutNotice() *models.Notice {
	return &models.Notice{
		Title:       "Checkout successful!",
		Description: "Your order has been placed. You'll receive a confirmation email shortly.",
		Variant:     models.NoticeDefault,
	}
}

// NoProductsNotice reports a project with nothing in stock.
func NoProductsNotice() *models.Notice {
	return &models.Notice{
		Title:       "No products available",
		Description: "All required products are currently out of stock.",
		Variant:     models.NoticeDestructive,
	}
}

package billlist

import (
	"github.com/billedhq/expense-client/internal/domain/entity"
	"github.com/billedhq/expense-client/internal/router"
	"go.uber.org/zap"
)

// Lightbox displays an attachment image in a modal over the list
type Lightbox interface {
	// Open shows the modal with the given image URL as its body
	Open(fileURL string)
}

// Controller wires the row-level interactions of the rendered bill list.
// It performs no network calls; data comes from the Loader.
type Controller struct {
	navigator router.Navigator
	lightbox  Lightbox
	logger    *zap.Logger
}

// NewController creates a new bills list controller
func NewController(navigator router.Navigator, lightbox Lightbox, logger *zap.Logger) *Controller {
	return &Controller{
		navigator: navigator,
		lightbox:  lightbox,
		logger:    logger,
	}
}

// HandleClickNewBill navigates to the new-bill form. No state is mutated.
func (c *Controller) HandleClickNewBill() {
	c.navigator.OnNavigate(router.PathNewBill)
}

// HandleClickIconEye opens the row's attachment in the lightbox.
// The modal is invoked even when the file URL is absent or malformed;
// it then simply shows no meaningful image.
func (c *Controller) HandleClickIconEye(bill entity.DisplayBill) {
	if bill.FileURL == "" {
		c.logger.Debug("Opening lightbox without file url",
			zap.String("bill_id", bill.ID))
	}
	c.lightbox.Open(bill.FileURL)
}

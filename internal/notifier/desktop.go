package notifier

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// Desktop shows OS toast notifications.
type Desktop struct{}

// NewDesktop creates a desktop deliverer that labels toasts with appName.
func NewDesktop(appName string) Desktop {
	beeep.AppName = appName
	return Desktop{}
}

func (Desktop) Deliver(title, body string) error {
	if err := beeep.Notify(title, body, ""); err != nil {
		return fmt.Errorf("failed to show desktop notification: %w", err)
	}
	return nil
}

package worker

import (
	"github.com/medmais/sistema-indicadores/internal/service"
)

// StartNotificationWorker registers the event handlers that keep the
// reference cache fresh and log activity.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

package rabbitmq

import "github.com/magabrotheeeer/psycontrol/internal/models"

// QueueConfig names a queue and the routing keys bound to it.
type QueueConfig struct {
	QueueName   string
	RoutingKeys []string
}

// AppointmentQueues returns the queues reminder consumers read from.
func AppointmentQueues() []QueueConfig {
	return []QueueConfig{
		{
			QueueName:   "appointments.reminders",
			RoutingKeys: []string{models.AppointmentScheduled, models.AppointmentCancelled, models.AppointmentReminderDue},
		},
	}
}

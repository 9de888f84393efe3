package templates

import (
	"time"

	"github.com/mamadbah2/butchershop/internal/domain/models"
)

// Defaults returns the templates seeded on first start.
func Defaults(now time.Time) []models.EmailTemplate {
	return []models.EmailTemplate{
		{
			ID:      "order-confirmation",
			Name:    "Order Confirmation",
			Type:    "confirmation",
			Subject: "Your order #{{orderId}} with {{shopName}}",
			Body: "Dear {{firstName}},\n\n" +
				"Thank you for your order. We have the following ready for collection on {{collectionDate}} at {{collectionTime}}:\n\n" +
				"{{items}}\n\n" +
				"{{notes}}\n\n" +
				"Kind regards,\n{{shopName}}",
			UpdatedAt: now,
		},
		{
			ID:      "ready-for-collection",
			Name:    "Ready for Collection",
			Type:    "ready",
			Subject: "Order #{{orderId}} is ready to collect",
			Body: "Dear {{firstName}},\n\n" +
				"Your order is ready and waiting for you at {{shopName}}.\n\n" +
				"{{items}}\n\n" +
				"See you soon,\n{{shopName}}",
			UpdatedAt: now,
		},
		{
			ID:      "christmas-confirmation",
			Name:    "Christmas Order Confirmation",
			Type:    "christmas",
			Subject: "Your Christmas order #{{orderId}} is confirmed",
			Body: "Dear {{customerName}},\n\n" +
				"Thank you for ordering your Christmas meat with {{shopName}}. Please collect on {{collectionDate}} at {{collectionTime}}.\n\n" +
				"{{items}}\n\n" +
				"Merry Christmas,\n{{shopName}}",
			UpdatedAt: now,
		},
		{
			ID:      "collection-reminder",
			Name:    "Collection Reminder",
			Type:    "reminder",
			Subject: "Reminder: collect order #{{orderId}} on {{collectionDate}}",
			Body: "Dear {{firstName}},\n\n" +
				"Just a reminder that your order is due for collection on {{collectionDate}} at {{collectionTime}}.\n\n" +
				"{{items}}\n\n" +
				"Thanks,\n{{shopName}}",
			UpdatedAt: now,
		},
	}
}

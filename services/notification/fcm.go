package notification

import (
	"context"
	"fmt"
	"strconv"

	"homefix/models"
	"homefix/utils"

	"firebase.google.com/go/v4/messaging"
)

// FCMSink is the production Sink implementation, pushing high-priority
// notifications to the provider's registered device.
type FCMSink struct{}

func NewFCMSink() *FCMSink {
	return &FCMSink{}
}

func (s *FCMSink) Alert(ctx context.Context, provider models.ProviderRef, alert BookingAlert) error {
	if provider.FCMToken == "" {
		return fmt.Errorf("provider %s has no FCM token", provider.ID)
	}

	data := map[string]string{
		"role":          "provider",
		"type":          "booking_alert",
		"bookingId":     alert.BookingID,
		"bookingNumber": alert.BookingNumber,
		"serviceType":   alert.ServiceType,
		"wave":          strconv.Itoa(alert.Wave),
		"lon":           strconv.FormatFloat(alert.Destination.Lon(), 'f', -1, 64),
		"lat":           strconv.FormatFloat(alert.Destination.Lat(), 'f', -1, 64),
	}

	msg := &messaging.Message{
		Token: provider.FCMToken,
		Notification: &messaging.Notification{
			Title: "New job nearby",
			Body:  fmt.Sprintf("%s request %s is waiting for a provider", alert.ServiceType, alert.BookingNumber),
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM alert to provider %s: %w", provider.ID, err)
	}
	return nil
}

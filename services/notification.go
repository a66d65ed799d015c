package services

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/utils"
)

var messagingClient *messaging.Client

// InitNotifications sets up the Firebase messaging client. Missing
// credentials disable pushes instead of failing startup.
func InitNotifications() error {
	credentialsFile := os.Getenv("FCM_CREDENTIALS_FILE")
	if credentialsFile == "" {
		utils.LogInfo("FCM_CREDENTIALS_FILE not set, push notifications disabled")
		return nil
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return fmt.Errorf("failed to init firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to init firebase messaging: %v", err)
	}

	messagingClient = client
	utils.LogInfo("Firebase messaging initialized")
	return nil
}

// SendPushNotification delivers one push message, best effort. Failures
// are logged and swallowed; a notification must never fail an order.
func SendPushNotification(fcmToken, title, body string, data map[string]string) {
	if messagingClient == nil || fcmToken == "" {
		return
	}

	message := &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "campus_eats_notifications",
			},
		},
	}

	if _, err := messagingClient.Send(context.Background(), message); err != nil {
		utils.LogError("Failed to send push notification: %v", err)
	}
}

// NotifyOrderStatus pushes an order status change to the order's owner
func NotifyOrderStatus(user *models.User, orderID uint, status string) {
	if user == nil {
		return
	}
	title, body := orderStatusNotification(status, orderID)
	SendPushNotification(user.FCMToken, title, body, map[string]string{
		"order_id": fmt.Sprintf("%d", orderID),
		"type":     "order_status",
		"status":   status,
	})
}

// NotifyContractExpiry warns a user their contract is about to lapse
func NotifyContractExpiry(user *models.User, contractID uint, daysLeft int) {
	if user == nil {
		return
	}
	title := "Contract Expiring Soon"
	body := fmt.Sprintf("Your contract will expire in %d days. Renew now to continue ordering.", daysLeft)
	SendPushNotification(user.FCMToken, title, body, map[string]string{
		"contract_id": fmt.Sprintf("%d", contractID),
		"type":        "contract_expiry",
	})
}

func orderStatusNotification(status string, orderID uint) (string, string) {
	switch status {
	case models.OrderStatusPending:
		return "Order Confirmed", fmt.Sprintf("Your order #%d has been placed.", orderID)
	case models.OrderStatusPreparing:
		return "Order Confirmed", fmt.Sprintf("Your order #%d is being prepared.", orderID)
	case models.OrderStatusReady:
		return "Order Ready", fmt.Sprintf("Your order #%d is ready for pickup! Show your QR code.", orderID)
	case models.OrderStatusDelivered:
		return "Order Delivered", fmt.Sprintf("Your order #%d has been delivered. Enjoy your meal!", orderID)
	case models.OrderStatusCancelled:
		return "Order Cancelled", fmt.Sprintf("Your order #%d has been cancelled.", orderID)
	default:
		return "Order Update", fmt.Sprintf("Your order #%d status changed to %s", orderID, status)
	}
}

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "twitterapi/internal/errors"
)

// Notification records an event sent from one user to another. It is never
// modified after creation.
type Notification struct {
	ID               string    `json:"_id" bson:"_id" gorm:"type:char(36);primaryKey"`
	Username         string    `json:"username" bson:"username" gorm:"size:255;not null"`
	NotSenderID      string    `json:"notSenderId" bson:"notSenderId" gorm:"column:not_sender_id;type:char(36);not null;index"`
	NotReceiverID    string    `json:"notReceiverId" bson:"notReceiverId" gorm:"column:not_receiver_id;type:char(36);not null;index"`
	NotificationType string    `json:"notificationType" bson:"notificationType" gorm:"size:50"`
	PostText         string    `json:"postText,omitempty" bson:"postText,omitempty" gorm:"type:text"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt" gorm:"index"`
}

// NewNotification builds a notification from sender to receiverID.
func NewNotification(sender *User, receiverID, notificationType, postText string) (*Notification, error) {
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return nil, apperrors.NewValidationError("notReceiverId", "receiver is required")
	}
	notificationType = strings.TrimSpace(notificationType)
	if notificationType == "" {
		return nil, apperrors.NewValidationError("notificationType", "notification type is required")
	}

	return &Notification{
		ID:               uuid.NewString(),
		Username:         sender.Username,
		NotSenderID:      sender.ID,
		NotReceiverID:    receiverID,
		NotificationType: notificationType,
		PostText:         strings.TrimSpace(postText),
		CreatedAt:        time.Now().UTC(),
	}, nil
}

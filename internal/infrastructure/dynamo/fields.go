package dynamo

// DynamoDB attribute names used in keys, indexes and update expressions.
const (
	fieldUserID               = "user_id"
	fieldNotificationID       = "notification_id"
	fieldLogID                = "log_id"
	fieldSessionID            = "session_id"
	fieldTemplateID           = "template_id"
	fieldUsername             = "username"
	fieldEmail                = "email"
	fieldCreatedAt            = "created_at"
	fieldRecipientID          = "recipient_id"
	fieldTimestamp            = "timestamp"
	fieldRead                 = "read"
	fieldEnable               = "enable"
	fieldRole                 = "role"
	fieldPushToken            = "push_token"
	fieldNotificationsEnabled = "notifications_enabled"
	fieldUpdatedAt            = "updated_at"
	fieldActive               = "active"
)

// Secondary index names created by Bootstrap.
const (
	indexUsername          = "username-index"
	indexEmail             = "email-index"
	indexUserSessions      = "user_id-index"
	indexUserNotifications = "user_id-created_at-index"
	indexRecipientLogs     = "recipient_id-timestamp-index"
)

// Request limits of the batch APIs.
const (
	batchWriteLimit = 25  // BatchWriteItem
	batchGetLimit   = 100 // BatchGetItem
)

package catalog

import "github.com/dukex/autoflow/pkg/models"

// Template slugs of the built-in catalog.
const (
	SlugSlackOrderCreated     = "slack-order-created"
	SlugSlackPaymentFailed    = "slack-payment-failed"
	SlugEmailContractActive   = "email-contract-active"
	SlugEmailPaymentReceived  = "email-payment-received"
	SlugWebhookOrderStatus    = "webhook-order-status"
	SlugWebhookContractSigned = "webhook-contract-signed"
	SlugCRMCustomerCreated    = "crm-customer-created"
	SlugCRMFinancingApproved  = "crm-financing-approved"
)

var (
	slackWebhookField = models.ConfigField{
		Key:         "webhookUrl",
		Label:       "Slack Webhook URL",
		Kind:        models.FieldKindURL,
		Placeholder: "https://hooks.slack.com/services/...",
		Required:    true,
	}
	slackChannelField = models.ConfigField{
		Key:         "channel",
		Label:       "Channel",
		Kind:        models.FieldKindText,
		Placeholder: "#orders",
		Required:    true,
	}
	recipientField = models.ConfigField{
		Key:         "recipient",
		Label:       "Recipient Email",
		Kind:        models.FieldKindEmail,
		Placeholder: "ops@example.com",
		Required:    true,
	}
	subjectField = models.ConfigField{
		Key:         "subject",
		Label:       "Subject",
		Kind:        models.FieldKindText,
		Placeholder: "Contract {{contract_id}} is now active",
		Required:    true,
	}
	endpointField = models.ConfigField{
		Key:         "url",
		Label:       "Endpoint URL",
		Kind:        models.FieldKindURL,
		Placeholder: "https://api.example.com/hooks/orders",
		Required:    true,
	}
	methodField = models.ConfigField{
		Key:      "method",
		Label:    "HTTP Method",
		Kind:     models.FieldKindSelect,
		Required: true,
		Options: []models.SelectOption{
			{Label: "POST", Value: "POST"},
			{Label: "PUT", Value: "PUT"},
		},
	}
	secretField = models.ConfigField{
		Key:         "secret",
		Label:       "Signing Secret",
		Kind:        models.FieldKindText,
		Placeholder: "Optional HMAC secret",
	}
	crmProviderField = models.ConfigField{
		Key:      "crmProvider",
		Label:    "CRM Provider",
		Kind:     models.FieldKindSelect,
		Required: true,
		Options: []models.SelectOption{
			{Label: "HubSpot", Value: "hubspot"},
			{Label: "Salesforce", Value: "salesforce"},
			{Label: "Pipedrive", Value: "pipedrive"},
		},
	}
	crmAPIKeyField = models.ConfigField{
		Key:         "apiKey",
		Label:       "API Key",
		Kind:        models.FieldKindText,
		Placeholder: "CRM API key",
		Required:    true,
	}
)

var builtinTemplates = []models.AutomationTemplate{
	{
		Slug:        SlugSlackOrderCreated,
		Name:        "Slack alert for new orders",
		Description: "Post a message to a Slack channel whenever a new order is created.",
		Category:    models.TemplateCategoryNotifications,
		Icon:        "slack",
		EventType:   EventOrderCreated,
		EventLabel:  "Order Created",
		ActionType:  models.ActionTypeSlack,
		ConfigFields: []models.ConfigField{
			slackWebhookField,
			slackChannelField,
			{
				Key:         "messageTemplate",
				Label:       "Message",
				Kind:        models.FieldKindTextarea,
				Placeholder: "New order {{order_id}} from {{company}} for {{amount}}",
			},
		},
		IsPopular: true,
	},
	{
		Slug:        SlugSlackPaymentFailed,
		Name:        "Slack alert for failed payments",
		Description: "Notify the collections team in Slack when a payment transaction fails.",
		Category:    models.TemplateCategoryNotifications,
		Icon:        "alert-triangle",
		EventType:   EventTransactionFailed,
		EventLabel:  "Payment Failed",
		ActionType:  models.ActionTypeSlack,
		ConfigFields: []models.ConfigField{
			slackWebhookField,
			slackChannelField,
		},
		IsPopular: true,
	},
	{
		Slug:        SlugEmailContractActive,
		Name:        "Email when a contract activates",
		Description: "Send an email to the account owner once a financing contract becomes active.",
		Category:    models.TemplateCategoryNotifications,
		Icon:        "mail",
		EventType:   EventContractActive,
		EventLabel:  "Contract Activated",
		ActionType:  models.ActionTypeEmail,
		ConfigFields: []models.ConfigField{
			recipientField,
			subjectField,
			{
				Key:         "body",
				Label:       "Body",
				Kind:        models.FieldKindTextarea,
				Placeholder: "Contract {{contract_id}} for {{company}} is active.",
			},
		},
	},
	{
		Slug:        SlugEmailPaymentReceived,
		Name:        "Payment receipt email",
		Description: "Email a receipt to finance whenever a payment is received.",
		Category:    models.TemplateCategoryNotifications,
		Icon:        "receipt",
		EventType:   EventTransactionCompleted,
		EventLabel:  "Payment Received",
		ActionType:  models.ActionTypeEmail,
		ConfigFields: []models.ConfigField{
			recipientField,
			{
				Key:         "subject",
				Label:       "Subject",
				Kind:        models.FieldKindText,
				Placeholder: "Payment {{transaction_id}} received",
				Required:    true,
			},
		},
	},
	{
		Slug:        SlugWebhookOrderStatus,
		Name:        "Order status webhook",
		Description: "Call an external endpoint whenever an order changes status.",
		Category:    models.TemplateCategoryOperations,
		Icon:        "webhook",
		EventType:   EventOrderStatusChanged,
		EventLabel:  "Order Status Changed",
		ActionType:  models.ActionTypeWebhook,
		ConfigFields: []models.ConfigField{
			endpointField,
			methodField,
			secretField,
		},
		IsPopular: true,
	},
	{
		Slug:        SlugWebhookContractSigned,
		Name:        "Contract signed webhook",
		Description: "Forward signed contracts to a document management system.",
		Category:    models.TemplateCategoryOperations,
		Icon:        "file-signature",
		EventType:   EventContractSigned,
		EventLabel:  "Contract Signed",
		ActionType:  models.ActionTypeWebhook,
		ConfigFields: []models.ConfigField{
			endpointField,
			methodField,
		},
	},
	{
		Slug:        SlugCRMCustomerCreated,
		Name:        "Sync new customers to CRM",
		Description: "Create a contact in your CRM when a new customer signs up.",
		Category:    models.TemplateCategoryCRM,
		Icon:        "users",
		EventType:   EventCustomerCreated,
		EventLabel:  "Customer Created",
		ActionType:  models.ActionTypeCRMUpdate,
		ConfigFields: []models.ConfigField{
			crmProviderField,
			crmAPIKeyField,
			{
				Key:         "pipeline",
				Label:       "Pipeline",
				Kind:        models.FieldKindText,
				Placeholder: "Merchants",
			},
		},
		IsPopular: true,
	},
	{
		Slug:        SlugCRMFinancingApproved,
		Name:        "Move deal on financing approval",
		Description: "Advance the CRM deal stage when a financing application is approved.",
		Category:    models.TemplateCategoryCRM,
		Icon:        "trending-up",
		EventType:   EventFinancingApproved,
		EventLabel:  "Financing Approved",
		ActionType:  models.ActionTypeCRMUpdate,
		ConfigFields: []models.ConfigField{
			crmProviderField,
			crmAPIKeyField,
			{
				Key:      "dealStage",
				Label:    "Deal Stage",
				Kind:     models.FieldKindSelect,
				Required: true,
				Options: []models.SelectOption{
					{Label: "Approved", Value: "approved"},
					{Label: "Closed Won", Value: "closed_won"},
				},
			},
		},
	},
}

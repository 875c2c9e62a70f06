package schema

import "github.com/dukex/autoflow/pkg/catalog"

func str(name, description string, required bool) PayloadField {
	return PayloadField{Name: name, Type: FieldTypeString, Required: required, Description: description}
}

func num(name, description string, required bool) PayloadField {
	return PayloadField{Name: name, Type: FieldTypeNumber, Required: required, Description: description}
}

var (
	companyField  = str("company", "Merchant company name", true)
	merchantField = str("merchant", "Merchant display name", false)
	customerField = str("customer", "Customer name", false)
	amountField   = num("amount", "Amount in USD", true)
)

var builtinSchemas = []PayloadSchema{
	{EventType: catalog.EventOrderCreated, Version: 1, Fields: []PayloadField{
		str("order_id", "Order identifier", true), companyField, amountField, merchantField, customerField,
	}},
	{EventType: catalog.EventOrderUpdated, Version: 1, Fields: []PayloadField{
		str("order_id", "Order identifier", true), companyField, amountField,
	}},
	{EventType: catalog.EventOrderStatusChanged, Version: 1, Fields: []PayloadField{
		str("order_id", "Order identifier", true), companyField,
		str("previous_status", "Status before the change", false),
		str("status", "Status after the change", true),
	}},
	{EventType: catalog.EventOrderCancelled, Version: 1, Fields: []PayloadField{
		str("order_id", "Order identifier", true), companyField, str("reason", "Cancellation reason", false),
	}},
	{EventType: catalog.EventContractCreated, Version: 1, Fields: []PayloadField{
		str("contract_id", "Contract identifier", true), companyField, amountField,
	}},
	{EventType: catalog.EventContractSigned, Version: 1, Fields: []PayloadField{
		str("contract_id", "Contract identifier", true), companyField, str("signed_by", "Signer name", false),
	}},
	{EventType: catalog.EventContractActive, Version: 1, Fields: []PayloadField{
		str("contract_id", "Contract identifier", true), companyField, amountField,
		num("term_months", "Contract term in months", false),
	}},
	{EventType: catalog.EventContractCompleted, Version: 1, Fields: []PayloadField{
		str("contract_id", "Contract identifier", true), companyField,
	}},
	{EventType: catalog.EventTransactionCompleted, Version: 1, Fields: []PayloadField{
		str("transaction_id", "Transaction identifier", true), companyField, amountField,
		str("contract_id", "Contract the payment applies to", false),
	}},
	{EventType: catalog.EventTransactionFailed, Version: 1, Fields: []PayloadField{
		str("transaction_id", "Transaction identifier", true), companyField, amountField,
		str("reason", "Processor decline reason", false),
	}},
	{EventType: catalog.EventPaymentOverdue, Version: 1, Fields: []PayloadField{
		str("contract_id", "Contract identifier", true), companyField, amountField,
		num("days_overdue", "Days past due", true),
	}},
	{EventType: catalog.EventCustomerCreated, Version: 1, Fields: []PayloadField{
		str("customer_id", "Customer identifier", true), customerField, str("email", "Customer email", false), companyField,
	}},
	{EventType: catalog.EventCustomerUpdated, Version: 1, Fields: []PayloadField{
		str("customer_id", "Customer identifier", true), customerField, str("email", "Customer email", false),
	}},
	{EventType: catalog.EventFinancingSubmitted, Version: 1, Fields: []PayloadField{
		str("application_id", "Financing application identifier", true), companyField, amountField,
	}},
	{EventType: catalog.EventFinancingApproved, Version: 1, Fields: []PayloadField{
		str("application_id", "Financing application identifier", true), companyField, amountField,
		num("apr", "Approved annual percentage rate", false),
	}},
	{EventType: catalog.EventFinancingDeclined, Version: 1, Fields: []PayloadField{
		str("application_id", "Financing application identifier", true), companyField,
		str("reason", "Decline reason", false),
	}},
}

package mcp

// ToolDefinition describes a tool exposed over MCP.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

func object(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func idOnly(description string) map[string]any {
	return object(map[string]any{"id": prop("string", description)}, "id")
}

// Amounts are strings so no precision is lost in transit.
const amountDesc = " (decimal string, e.g. \"125.00\")"

func clientProps() map[string]any {
	return map[string]any{
		"name":          prop("string", "Client name, unique case-insensitively"),
		"email":         prop("string", "Billing email address"),
		"first_name":    prop("string", "Contact first name"),
		"last_name":     prop("string", "Contact last name"),
		"phone":         prop("string", "Phone number"),
		"address_line1": prop("string", "Street address"),
		"address_line2": prop("string", "Apartment, suite, etc."),
		"city":          prop("string", "City"),
		"state":         prop("string", "State or region"),
		"zip_code":      prop("string", "Postal code"),
		"country":       prop("string", "Country"),
		"notes":         prop("string", "Free-form notes"),
	}
}

func lineItemProps() map[string]any {
	return map[string]any{
		"time_entry_id": prop("string", "Bill this completed, unbilled time entry; task, hours and rate default from it"),
		"project_id":    prop("string", "Project the item is grouped under"),
		"description":   prop("string", "Line item description"),
		"quantity":      prop("string", "Quantity, usually hours"+amountDesc),
		"rate":          prop("string", "Unit rate"+amountDesc),
	}
}

func timeFilterProps() map[string]any {
	return map[string]any{
		"client_id":  prop("string", "Only entries for this client"),
		"project_id": prop("string", "Only entries for this project"),
		"status":     enum("Timer status", "running", "completed"),
		"billing":    enum("Billing state", "unbilled", "billed", "paid"),
		"limit":      prop("integer", "Maximum results"),
		"offset":     prop("integer", "Results to skip"),
	}
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Clients
		{
			Name:        "create_client",
			Description: "Create a client to bill",
			InputSchema: object(clientProps(), "name"),
		},
		{
			Name:        "list_clients",
			Description: "List all clients ordered by name",
			InputSchema: object(map[string]any{}),
		},
		{
			Name:        "get_client",
			Description: "Get a client by ID",
			InputSchema: idOnly("Client ID"),
		},
		{
			Name:        "update_client",
			Description: "Update client fields; omitted fields keep their values",
			InputSchema: func() map[string]any {
				props := clientProps()
				props["id"] = prop("string", "Client ID")
				return object(props, "id")
			}(),
		},
		{
			Name:        "delete_client",
			Description: "Delete a client along with its projects, time entries and invoices",
			InputSchema: idOnly("Client ID"),
		},

		// Projects
		{
			Name:        "create_project",
			Description: "Create a project with an hourly rate under a client",
			InputSchema: object(map[string]any{
				"client_id": prop("string", "Owning client ID"),
				"name":      prop("string", "Project name, unique within the client"),
				"rate":      prop("string", "Hourly rate"+amountDesc),
			}, "client_id", "name", "rate"),
		},
		{
			Name:        "list_projects",
			Description: "List projects, optionally for one client",
			InputSchema: object(map[string]any{
				"client_id": prop("string", "Only projects for this client"),
			}),
		},
		{
			Name:        "get_project",
			Description: "Get a project by ID",
			InputSchema: idOnly("Project ID"),
		},
		{
			Name:        "update_project",
			Description: "Rename a project or change its rate. Existing time entries keep their rate",
			InputSchema: object(map[string]any{
				"id":   prop("string", "Project ID"),
				"name": prop("string", "New name"),
				"rate": prop("string", "New hourly rate"+amountDesc),
			}, "id"),
		},
		{
			Name:        "delete_project",
			Description: "Delete a project and its time entries",
			InputSchema: idOnly("Project ID"),
		},

		// Time tracking
		{
			Name: "start_timer",
			Description: "Start the timer. Only one timer can run at a time. " +
				"Pass new_client_name/new_project_name to create them inline.",
			InputSchema: object(map[string]any{
				"client_id":        prop("string", "Existing client ID"),
				"project_id":       prop("string", "Existing project ID"),
				"task":             prop("string", "What you are working on"),
				"existing_task":    prop("string", "Reuse a task name from list_tasks"),
				"notes":            prop("string", "Notes for the entry"),
				"new_client_name":  prop("string", "Create or reuse a client by this name"),
				"new_project_name": prop("string", "Create or reuse a project by this name"),
				"new_project_rate": prop("string", "Rate for a newly created project"+amountDesc),
			}),
		},
		{
			Name:        "stop_timer",
			Description: "Stop a running timer; omit id to stop the one that is running",
			InputSchema: object(map[string]any{
				"id": prop("string", "Time entry ID"),
			}),
		},
		{
			Name:        "get_running_timer",
			Description: "Report the running timer, if any",
			InputSchema: object(map[string]any{}),
		},
		{
			Name:        "list_time_entries",
			Description: "List time entries newest first",
			InputSchema: object(timeFilterProps()),
		},
		{
			Name:        "get_time_entry",
			Description: "Get a time entry by ID",
			InputSchema: idOnly("Time entry ID"),
		},
		{
			Name:        "update_time_entry",
			Description: "Edit a time entry. Times are re-rounded to five minutes and earnings recomputed. Entries on paid invoices are locked",
			InputSchema: object(map[string]any{
				"id":         prop("string", "Time entry ID"),
				"client_id":  prop("string", "Move to this client"),
				"project_id": prop("string", "Move to this project"),
				"task":       prop("string", "Task description"),
				"notes":      prop("string", "Notes"),
				"start_time": prop("string", "Start time (RFC 3339)"),
				"end_time":   prop("string", "End time (RFC 3339)"),
				"rate":       prop("string", "Hourly rate"+amountDesc),
			}, "id"),
		},
		{
			Name:        "delete_time_entry",
			Description: "Delete a time entry that is not on a paid invoice",
			InputSchema: idOnly("Time entry ID"),
		},
		{
			Name:        "list_tasks",
			Description: "List distinct task names used on a project",
			InputSchema: object(map[string]any{
				"project_id": prop("string", "Project ID"),
			}, "project_id"),
		},
		{
			Name:        "list_unbilled_time_entries",
			Description: "List completed, unbilled time entries for a client with hours and amounts",
			InputSchema: object(map[string]any{
				"client_id": prop("string", "Client ID"),
			}, "client_id"),
		},
		{
			Name:        "time_report",
			Description: "Summarize tracked time and earnings per client and project",
			InputSchema: object(timeFilterProps()),
		},

		// Profile
		{
			Name:        "get_profile",
			Description: "Get the freelancer billing profile",
			InputSchema: object(map[string]any{}),
		},
		{
			Name:        "save_profile",
			Description: "Create or update the billing profile; omitted fields keep their values",
			InputSchema: object(map[string]any{
				"entity_type":                  enum("Bill as a person or a business", "individual", "business"),
				"business_name":                prop("string", "Required for businesses"),
				"first_name":                   prop("string", "Required for individuals"),
				"last_name":                    prop("string", "Required for individuals"),
				"email":                        prop("string", "Contact email"),
				"phone":                        prop("string", "Phone number"),
				"address_line1":                prop("string", "Street address"),
				"address_line2":                prop("string", "Apartment, suite, etc."),
				"city":                         prop("string", "City"),
				"state":                        prop("string", "State or region"),
				"zip_code":                     prop("string", "Postal code"),
				"country":                      prop("string", "Country"),
				"invoice_prefix":               prop("string", "Prefix for generated invoice numbers, e.g. INV"),
				"next_invoice_number":          prop("integer", "Next sequence number to hand out"),
				"default_payment_terms":        prop("integer", "Days until an invoice is due"),
				"default_invoice_notes":        prop("string", "Notes added to new invoices"),
				"default_payment_instructions": prop("string", "Payment instructions added to new invoices"),
			}),
		},

		// Invoices
		{
			Name:        "create_invoice",
			Description: "Create an invoice. The number is generated from the profile unless given. Time entries become billed",
			InputSchema: object(map[string]any{
				"client_id":            prop("string", "Client ID"),
				"invoice_number":       prop("string", "Explicit invoice number"),
				"status":               enum("Initial status", "draft", "sent"),
				"invoice_date":         prop("string", "Invoice date (YYYY-MM-DD), defaults to today"),
				"due_date":             prop("string", "Due date (YYYY-MM-DD), defaults from payment terms"),
				"discount_amount":      prop("string", "Flat discount"+amountDesc),
				"tax_rate":             prop("string", "Tax percentage, stored only"+amountDesc),
				"notes":                prop("string", "Invoice notes"),
				"payment_instructions": prop("string", "How to pay"),
				"line_items": map[string]any{
					"type":        "array",
					"description": "Line items",
					"items":       object(lineItemProps()),
				},
			}, "client_id"),
		},
		{
			Name:        "list_invoices",
			Description: "List invoices newest first",
			InputSchema: object(map[string]any{
				"client_id": prop("string", "Only invoices for this client"),
				"status":    enum("Only invoices in this status", "draft", "sent", "viewed", "partially_paid", "paid", "overdue", "cancelled"),
				"overdue":   prop("boolean", "Only sent invoices past their due date"),
				"unpaid":    prop("boolean", "Only sent, overdue or partially paid invoices"),
				"limit":     prop("integer", "Maximum results"),
				"offset":    prop("integer", "Results to skip"),
			}),
		},
		{
			Name:        "get_invoice",
			Description: "Get an invoice with line items and amount paid",
			InputSchema: idOnly("Invoice ID"),
		},
		{
			Name:        "update_invoice",
			Description: "Update invoice fields or move it through its status workflow",
			InputSchema: object(map[string]any{
				"id":                   prop("string", "Invoice ID"),
				"invoice_number":       prop("string", "New invoice number"),
				"status":               enum("Target status", "draft", "sent", "viewed", "partially_paid", "paid", "overdue", "cancelled"),
				"invoice_date":         prop("string", "Invoice date (YYYY-MM-DD)"),
				"due_date":             prop("string", "Due date (YYYY-MM-DD)"),
				"paid_date":            prop("string", "Paid date (YYYY-MM-DD)"),
				"discount_amount":      prop("string", "Flat discount"+amountDesc),
				"tax_rate":             prop("string", "Tax percentage, stored only"+amountDesc),
				"notes":                prop("string", "Invoice notes"),
				"payment_instructions": prop("string", "How to pay"),
			}, "id"),
		},
		{
			Name:        "delete_invoice",
			Description: "Delete an invoice. Its time entries return to unbilled",
			InputSchema: idOnly("Invoice ID"),
		},
		{
			Name:        "add_line_item",
			Description: "Add a line item to an unpaid invoice",
			InputSchema: func() map[string]any {
				props := lineItemProps()
				props["invoice_id"] = prop("string", "Invoice ID")
				return object(props, "invoice_id")
			}(),
		},
		{
			Name:        "update_line_item",
			Description: "Edit a line item on an unpaid invoice",
			InputSchema: func() map[string]any {
				props := lineItemProps()
				props["invoice_id"] = prop("string", "Invoice ID")
				props["line_item_id"] = prop("string", "Line item ID")
				delete(props, "time_entry_id")
				return object(props, "invoice_id", "line_item_id")
			}(),
		},
		{
			Name:        "remove_line_item",
			Description: "Remove a line item from an unpaid invoice",
			InputSchema: object(map[string]any{
				"invoice_id":   prop("string", "Invoice ID"),
				"line_item_id": prop("string", "Line item ID"),
			}, "invoice_id", "line_item_id"),
		},
		{
			Name:        "get_invoice_document",
			Description: "Get the printable view of an invoice, with items grouped by project",
			InputSchema: idOnly("Invoice ID"),
		},

		// Payments
		{
			Name:        "record_payment",
			Description: "Record a payment against an invoice and reconcile its status",
			InputSchema: object(map[string]any{
				"invoice_id":       prop("string", "Invoice ID"),
				"amount":           prop("string", "Amount received"+amountDesc),
				"payment_date":     prop("string", "Date received (YYYY-MM-DD)"),
				"payment_method":   enum("How it was paid", "bank_wire", "zelle", "cashapp", "venmo", "stripe", "paypal", "check", "cash"),
				"reference_number": prop("string", "Check or transaction number"),
				"notes":            prop("string", "Notes"),
			}, "invoice_id", "amount", "payment_date", "payment_method"),
		},
		{
			Name:        "settle_invoice",
			Description: "Record a payment for the full amount still due",
			InputSchema: object(map[string]any{
				"invoice_id":       prop("string", "Invoice ID"),
				"payment_date":     prop("string", "Date received (YYYY-MM-DD), defaults to today"),
				"payment_method":   enum("How it was paid", "bank_wire", "zelle", "cashapp", "venmo", "stripe", "paypal", "check", "cash"),
				"reference_number": prop("string", "Check or transaction number"),
				"notes":            prop("string", "Notes"),
			}, "invoice_id", "payment_method"),
		},
		{
			Name:        "list_payments",
			Description: "List payments recorded on an invoice",
			InputSchema: object(map[string]any{
				"invoice_id": prop("string", "Invoice ID"),
			}, "invoice_id"),
		},
		{
			Name:        "delete_payment",
			Description: "Delete a payment and reconcile the invoice status",
			InputSchema: object(map[string]any{
				"invoice_id": prop("string", "Invoice ID"),
				"payment_id": prop("string", "Payment ID"),
			}, "invoice_id", "payment_id"),
		},

		// Activity
		{
			Name:        "get_recent_activity",
			Description: "List recent changes newest first",
			InputSchema: object(map[string]any{
				"entity_type":   enum("Only this kind of entity", "time_entry", "invoice"),
				"entity_id":     prop("string", "Only this entity"),
				"activity_type": prop("string", "Only this activity type"),
				"limit":         prop("integer", "Maximum results"),
				"offset":        prop("integer", "Results to skip"),
			}),
		},
	}
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-address"))
}

func TestRedactPIIValue(t *testing.T) {
	assert.Equal(t, "cu***@acme.com", redactPIIValue("sender", "customer@acme.com"))
	assert.Equal(t, "cu***@acme.com", redactPIIValue("customer_email", "customer@acme.com"))
	assert.Equal(t, "fo***@fwd.com", redactPIIValue("recipient", "forward@fwd.com"))

	// Addresses embedded in generic fields are masked too.
	got := redactPIIValue("note", "reply went to ops@fwd.com today")
	assert.Equal(t, "reply went to op***@fwd.com today", got)

	assert.Equal(t, "thread_42", redactPIIValue("thread_id", "thread_42"))
}

package responder

// Template sources, one subject/body pair per response type. Bindings
// are produced by Generator.bindings.
var templateSources = map[string]struct {
	subject string
	body    string
}{
	"clarification": {
		subject: `Re: Your shipping quote request{% if origin_display != "" and destination_display != "" %} - {{ origin_display }} to {{ destination_display }}{% endif %}`,
		body: `Hi {{ first_name | default: "there" }},

Thanks for reaching out. To prepare an accurate quote we still need the following details:

{% for field in missing_fields %}- {{ field }}
{% endfor %}
Once we have these we can confirm your shipment and source rates right away.

Best regards,
{{ team }}`,
	},

	"confirmation": {
		subject: `Please confirm your shipment{% if origin_display != "" and destination_display != "" %}: {{ origin_display }} to {{ destination_display }}{% endif %}`,
		body: `Hi {{ first_name | default: "there" }},

We have everything we need. Please confirm the details below so we can request rates from our partner forwarders:

Route: {{ origin_display }} to {{ destination_display }}
{% for line in detail_lines %}{{ line.label }}: {{ line.value }}
{% endfor %}{% if recommended_range %}
Indicative market range: {{ recommended_range }}
{% endif %}
Reply "confirmed" and we will take it from there.

Best regards,
{{ team }}`,
	},

	"acknowledgment": {
		subject: `Re: {{ subject | default: "Your message" }}`,
		body: `Hi {{ first_name | default: "there" }},

Thanks for your message. We have logged it against the shipment thread and will follow up shortly.

Best regards,
{{ team }}`,
	},

	"confirmation_acknowledgment": {
		subject: `Booking confirmed{% if origin_display != "" and destination_display != "" %}: {{ origin_display }} to {{ destination_display }}{% endif %}`,
		body: `Hi {{ first_name | default: "there" }},

Thank you for confirming. We are now requesting rates from our partner forwarders for:

Route: {{ origin_display }} to {{ destination_display }}
{% for line in detail_lines %}{{ line.label }}: {{ line.value }}
{% endfor %}
{% if sales_person %}{{ sales_person }} will send your quote as soon as rates come in.{% else %}We will send your quote as soon as rates come in.{% endif %}

Best regards,
{{ team }}`,
	},

	"customer_quote": {
		subject: `Your quote{% if origin_display != "" and destination_display != "" %}: {{ origin_display }} to {{ destination_display }}{% endif %}`,
		body: `Hi {{ first_name | default: "there" }},

Good news: we have rates for your shipment.

Route: {{ origin_display }} to {{ destination_display }}
{% for line in rate_lines %}{{ line.label }}: {{ line.value }}
{% endfor %}
{% if sales_person %}{{ sales_person }} is your point of contact for booking.{% endif %}

Best regards,
{{ team }}`,
	},
}

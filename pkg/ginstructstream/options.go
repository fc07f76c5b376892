package ginstructstream

// EndpointOption configures an endpoint's OpenAPI description
type EndpointOption func(*EndpointSpec)

// WithSummary sets the endpoint summary
func WithSummary(s string) EndpointOption {
	return func(spec *EndpointSpec) {
		spec.Summary = s
	}
}

// WithDescription sets the endpoint description
func WithDescription(d string) EndpointOption {
	return func(spec *EndpointSpec) {
		spec.Description = d
	}
}

// WithTags adds tags to the endpoint
func WithTags(tags ...string) EndpointOption {
	return func(spec *EndpointSpec) {
		spec.Tags = append(spec.Tags, tags...)
	}
}

// WithDeprecated marks the endpoint as deprecated
func WithDeprecated() EndpointOption {
	return func(spec *EndpointSpec) {
		spec.Deprecated = true
	}
}

// WithRequestExamples adds examples for the request body
func WithRequestExamples(examples map[string]any) EndpointOption {
	return func(spec *EndpointSpec) {
		spec.RequestExamples = examples
	}
}

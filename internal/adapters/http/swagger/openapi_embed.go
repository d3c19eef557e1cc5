package swagger

import _ "embed"

// OpenAPI contains the embedded OpenAPI YAML document of both services.
//
//go:embed openapi.yaml
var OpenAPI []byte

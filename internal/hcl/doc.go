// Package hcl provides the concrete HCL implementation for the configuration
// loading and data conversion interfaces defined in the `config` package,
// and the evaluator for modules written in HCL.
//
// An HCL module source looks like:
//
//	define {
//	  import "settings" { id = "./settings" }
//	  import "port" {
//	    id   = "env"
//	    type = map(string)
//	  }
//	  exports = {
//	    url = format("http://%s:%s", settings.host, port.PORT)
//	  }
//	}
package hcl

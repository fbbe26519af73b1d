// Package cloud classifies the cluster's cloud provider from node labels and
// validates provider-specific prerequisites: supported machine/instance
// types, accelerator availability, and (for GKE) advisory zone compatibility.
//
// All provider knowledge lives in data tables so supporting a new provider
// or instance type is a table entry, not new code.
package cloud

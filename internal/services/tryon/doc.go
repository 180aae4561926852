// Package tryon provides the HTTP client for the try-on synthesis backend.
//
// It submits person and garment images as a multipart request, polls the
// backend health endpoint, and downloads finished result images. Responses
// are strongly typed so the workflow manager can record outcomes without
// touching raw JSON. Errors are tagged with the services package markers so
// callers can distinguish timeouts from backend failures. Options allow
// tests to supply custom HTTP clients or stub behaviour without modifying
// production code.
package tryon

// Package broken holds types the providers must reject.
package broken

type Broken struct {
	Notify chan string `json:"notify"`
}

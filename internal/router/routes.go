// Package router names the navigation destinations the controllers request.
// The routing framework that swaps views lives outside this module; it is
// reached only through the Navigator capability.
package router

// Recognized destinations
const (
	PathBills   = "#employee/bills"
	PathNewBill = "#employee/bill/new"
)

// Navigator issues a view change for the given pathname
type Navigator interface {
	OnNavigate(pathname string)
}

// NavigatorFunc adapts a function to the Navigator interface
type NavigatorFunc func(pathname string)

func (f NavigatorFunc) OnNavigate(pathname string) { f(pathname) }

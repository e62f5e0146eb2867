package policies

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

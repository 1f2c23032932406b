package exceptions

func Cast[T any](err error) (T, bool) {
	var defaultValue T
	if err == nil {
		return defaultValue, false
	}

	for {
		interfaceError, isInterface := err.(T)
		if isInterface {
			return interfaceError, true
		}
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
			if err == nil {
				return defaultValue, false
			}
		case interface{ Unwrap() []error }:
			for _, innerErr := range x.Unwrap() {
				if interfaceError, isInterface = Cast[T](innerErr); isInterface {
					return interfaceError, true
				}
			}
			return defaultValue, false
		default:
			return defaultValue, false
		}
	}
}

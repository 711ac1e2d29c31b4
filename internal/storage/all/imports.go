// Package all wires the built-in storage backends into the storage factory.
// Importing it (blank) runs each backend's init registration, making the
// "sqlite" and "postgres" kinds available to storage.New.
package all

import (
	_ "efetivo/internal/storage/postgres"
	_ "efetivo/internal/storage/sqlite"
)

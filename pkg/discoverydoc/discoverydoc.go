// Package discoverydoc generates the static Discovery Document (spec.md
// §4.9): a deploy artifact, not served dynamically by the core. Devices
// fetch this file over HTTPS at most once per update_interval_hours and
// cache it, falling back to a compiled-in host list if unreachable.
package discoverydoc

// Document is the exact JSON shape spec.md §6 specifies.
type Document struct {
	APIServer           string    `json:"api_server"`
	BackupServers       []string  `json:"backup_servers"`
	Version             string    `json:"version"`
	Timestamp           int64     `json:"timestamp"`
	Endpoints           Endpoints `json:"endpoints"`
	UpdateIntervalHours int       `json:"update_interval_hours"`
}

// Endpoints names the two device-facing routes the document advertises.
type Endpoints struct {
	ArduinoData string `json:"arduino_data"`
	Status      string `json:"status"`
}

// Generate builds a Document for the given deploy parameters. timestamp is
// passed in by the caller (epoch seconds) rather than computed here, since
// this package has no I/O and the caller already knows the build time.
func Generate(apiServer string, backupServers []string, version string, timestamp int64, updateIntervalHours int) Document {
	if updateIntervalHours <= 0 {
		updateIntervalHours = 24
	}
	return Document{
		APIServer:     apiServer,
		BackupServers: backupServers,
		Version:       version,
		Timestamp:     timestamp,
		Endpoints: Endpoints{
			ArduinoData: "/api/arduino/{arduino_id}/data",
			Status:      "/api/arduino/status",
		},
		UpdateIntervalHours: updateIntervalHours,
	}
}

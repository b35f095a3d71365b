package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID is mixed into the machine ID so the raw ID is never exposed.
const AppID = "rclink"

// MachineID retrieves the unique ID identifying the machine.
// It falls back to the host name if the ID is not available.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "unknown"
}

// ClientID returns a short ID for the given program on this machine.
func ClientID(program string) string {
	id := MachineID()
	if len(id) > 12 {
		id = id[:12]
	}
	return program + "-" + id
}

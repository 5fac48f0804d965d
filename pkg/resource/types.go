package resource

import "slices"

type Provider string

const (
	Hetzner Provider = "hetzner"
	AWS     Provider = "aws"
	Azure   Provider = "azure"
	GCP     Provider = "gcp"
	OCI     Provider = "oci"
	OVH     Provider = "ovh"
)

// Providers is the allow-list of providers, in default submission order.
var Providers = []Provider{Hetzner, AWS, Azure, GCP, OCI, OVH}

func (p Provider) Valid() bool {
	return slices.Contains(Providers, p)
}

type Type string

const (
	CloudServer         Type = "cloud-server"
	CloudLoadBalancer   Type = "cloud-loadbalancer"
	CloudVolume         Type = "cloud-volume"
	CloudNetwork        Type = "cloud-network"
	CloudFloatingIP     Type = "cloud-floating-ip"
	CloudSnapshot       Type = "cloud-snapshot"
	CloudCertificate    Type = "cloud-certificate"
	DedicatedServer     Type = "dedicated-server"
	DedicatedAuction    Type = "dedicated-auction"
	DedicatedStorage    Type = "dedicated-storage"
	DedicatedColocation Type = "dedicated-colocation"
)

// Types is the allow-list of offering types.
var Types = []Type{
	CloudServer,
	CloudLoadBalancer,
	CloudVolume,
	CloudNetwork,
	CloudFloatingIP,
	CloudSnapshot,
	CloudCertificate,
	DedicatedServer,
	DedicatedAuction,
	DedicatedStorage,
	DedicatedColocation,
}

func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}

// IsCompute reports whether records of this type must carry vCPU and memory.
func (t Type) IsCompute() bool {
	return t == CloudServer || t == DedicatedServer || t == DedicatedAuction
}

type Platform string

const (
	PlatformCloud     Platform = "cloud"
	PlatformDedicated Platform = "dedicated"
)

type PriceUnit string

const (
	Hourly  PriceUnit = "hourly"
	Monthly PriceUnit = "monthly"
)

const (
	USD = "USD"
	EUR = "EUR"

	// HoursPerMonth converts between hourly and monthly prices.
	HoursPerMonth = 730.44
)

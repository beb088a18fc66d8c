package common

type Config struct {
	// OriginDomain is the name of the domain the messages are dispatched from, e.g. "ethereum"
	OriginDomain string `mapstructure:"OriginDomain"`
	// OriginURL is the url of the RPC node of the origin chain
	OriginURL string `mapstructure:"OriginURL"`
}

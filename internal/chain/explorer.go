package chain

import (
	"net/url"
	"strings"
)

// ExplorerTxURL returns the explorer link for a transaction signature.
// The cluster query parameter is omitted for mainnet.
func ExplorerTxURL(base, cluster, signature string) string {
	if signature == "" {
		return ""
	}

	link := strings.TrimRight(base, "/") + "/tx/" + url.PathEscape(signature)

	cluster = strings.TrimSpace(cluster)
	if cluster == "" || cluster == ClusterMainnet || cluster == "mainnet" {
		return link
	}

	return link + "?cluster=" + url.QueryEscape(cluster)
}

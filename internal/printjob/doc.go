// Package printjob defines the print item model shared by the layout packer
// and the pricing engine. Items arrive straight from live form input, so
// parsing is lenient: malformed dimensions never fail, they make the item
// invalid and it then contributes nothing to layout or pricing.
package printjob

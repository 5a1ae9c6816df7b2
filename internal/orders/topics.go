package orders

const (
	TopicOrderConfirmed = "order.confirmed"
)

// Partition key = order_id, so events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

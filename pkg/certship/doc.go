// Package certship provides an embeddable mutual-TLS record forwarder.
//
// A Forwarder takes batches of structured records from a host pipeline,
// serializes each record as JSON and posts it over HTTPS to a single endpoint,
// authenticating with a client certificate and RSA key read from disk.
// Deliveries are not retried and nothing is persisted: a record that cannot
// be delivered is logged, counted and dropped, and the batch carries on.
//
// # Basic Usage
//
//	f, err := certship.New(certship.Config{
//	    EndpointURL: "https://ingest.example.com/api/records",
//	    CertPath:    "/etc/certship/client.crt",
//	    KeyPath:     "/etc/certship/client.key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := f.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Shutdown()
//
//	f.Emit(ctx, "app.logs", certship.Batch{
//	    {Time: time.Now(), Record: certship.Record{"msg": "hello"}},
//	}, func() { /* acknowledge the batch upstream */ })
//
// # Credentials
//
// Credentials are loaded lazily. Start attempts a load and probes the
// endpoint with HEAD /, but neither failure is fatal: every delivery retries
// the load until it succeeds once, after which the certificate is kept for
// the life of the process. The credwatcher plugin reloads as soon as the
// files appear instead of waiting for the next batch.
//
// # Events and Metrics
//
// Implement [EventHandler] (embedding [BaseEventHandler]) and pass it with
// [WithEventHandler] to observe deliveries. [Forwarder.Stats] and
// [Forwarder.WriteMetrics] expose the counters.
package certship

// Package datacite is a thin client for the DataCite REST API.
//
// The DataCite REST API is RESTful, returns JSON, and follows the JSONAPI
// specification; resource bodies use the application/vnd.api+json mime type.
// This package maps the DOI lifecycle onto the API's HTTP verbs:
//
//	CreateOrUpdate  POST   {base}/dois, falling back to PUT {base}/dois/{doi}
//	Update          PUT    {base}/dois/{doi}
//	Delete          DELETE {base}/dois/{doi}
//	Retrieve        GET    {base}/dois/{doi}
//	Heartbeat       GET    {base}/heartbeat
//
// Registering a DOI is ambiguous from the caller's side: the identifier may
// or may not already exist. CreateOrUpdate resolves that on the wire. It
// attempts a create, and if the API answers with 422 (the conflict-class
// status DataCite uses for "already taken"), it re-issues the same payload
// as an update. The returned Outcome records exactly which path ran.
//
// HTTP-level failures are not errors in the Go sense here: operations return
// the failing Response for the caller to inspect, and reserve the error
// return for transport problems where no response was received at all.
//
//	client, err := datacite.NewClient(datacite.ClientConfig{
//	    BaseURL:  "https://api.test.datacite.org",
//	    Username: "REPO.USER",
//	    Password: os.Getenv("DATACITE_PASSWORD"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outcome, err := client.CreateOrUpdate(ctx, "10.5438/0012", body)
//
// Payload validation against the DataCite metadata schema is a caller-side
// precondition; see the schema package.
package datacite

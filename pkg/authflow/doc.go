/*
Package authflow implements the SpoutBreeze session lifecycle: OAuth2
Authorization Code with PKCE against the Keycloak realm, code exchange through
the backend, and an HTTP client that refreshes expired credentials on 401 and
replays the failed request.

# Flow

	client, err := authflow.New(cfg, authflow.WithNavigator(nav))

	// 1. Send the user to the identity provider.
	loginURL, err := client.BuildLoginURL(ctx)

	// 2. The IdP redirects back with ?code=...
	code, err := authflow.ParseAuthorizationCallback(callbackURL)
	_, err = client.ExchangeCode(ctx, code)

	// 3. Every API call goes through Do.
	resp, err := client.Do(req)

	// 4. Tear down.
	result := client.Logout(ctx)

# Variants

In ModeCookie (the default) the backend keeps access and refresh tokens in
HTTP-only cookies. The client only holds a cookie jar and never sees the token
values. In ModeToken the backend returns the tokens in the response body and
the client stores them in a CredentialStore and sends a bearer header.

# Refresh

When a request fails with 401 the first caller becomes the refresh leader and
calls the refresh endpoint. Callers that hit 401 while a refresh is in flight
wait for its outcome instead of refreshing again. On success every waiter
replays its request once; on failure every waiter gets its original 401 back,
the credentials are cleared, and unless the current location is public the
Navigator is sent to a freshly built login URL. A replayed request that fails
again is returned as-is.
*/
package authflow

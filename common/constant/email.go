package constant

const EmailRegistrationConfirmedTemplate = `
Hi %s,

You're in! Your registration is confirmed.

Registration Details:
------------------------------------------
Registration ID: %s
Event: %s
When: %s
Venue: %s
Amount Paid: %s
Team: %s
------------------------------------------

Your ticket QR code is available under "My Registrations". Show it at the venue entrance;
each ticket can be scanned only once.

If you have any questions, reach the organising committee at events@student-association.org.

See you there,
Student Association Events Team

Note: This is an automated message, please do not reply to this email.
`

const EmailPaymentExpiredTemplate = `
Hi %s,

Your payment for the event below was not completed in time, so the order has been closed.
No registration was created and no amount has been captured for this order.

Order Details:
------------------------------------------
Order ID: %s
Event: %s
Amount: %s
------------------------------------------

You can register again from the event page; a new payment order will be created.

Student Association Events Team

Note: This is an automated message, please do not reply to this email.
`
